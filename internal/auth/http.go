package auth

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/apperr"
)

// RequireUser authenticates the bearer token and stores the live Principal
// in the request context.
func RequireUser(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var p *Principal
			p, err = a.Authenticate(c.Request.Context(), tok)
			if err == nil {
				c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
				c.Next()
				return
			}
		}
		abort(c, err)
	}
}

// RequireAdminRole rejects callers without the admin role. Must be used
// after RequireUser.
func RequireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := RequireAdmin(c.Request.Context()); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	if k := apperr.KindOf(err); k == apperr.KindPersistence || k == apperr.KindInternal {
		slog.Error("authentication failed", "component", "auth", "error", err)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}
