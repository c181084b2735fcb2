package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/auth"
)

// respondError writes err as {"error": message}. Details of internal and
// persistence failures are logged, never sent.
func (api *API) respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := apperr.HTTPStatus(e)
	if status >= http.StatusInternalServerError {
		api.logger.Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"kind", e.Kind.String(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e.Message})
}

func (api *API) validationError(c *gin.Context, msg string) {
	api.respondError(c, apperr.Validation("%s", msg))
}

// pathID parses the :id parameter. Unparseable ids cannot exist, so they
// are reported as notFound.
func (api *API) pathID(c *gin.Context, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.respondError(c, apperr.NotFound("%s", notFound))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// principal returns the caller stored by auth.RequireUser.
func (api *API) principal(c *gin.Context) (*auth.Principal, bool) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return nil, false
	}
	return p, true
}
