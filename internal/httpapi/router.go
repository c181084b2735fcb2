// Package httpapi exposes the REST surface under /api.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/service"
)

// Options configures NewRouter.
type Options struct {
	ClientURL string // allowed CORS origin; empty allows none
	Logger    *slog.Logger
}

type API struct {
	accounts    *service.AccountService
	generations *service.GenerationService
	templates   *service.TemplateService
	admin       *service.AdminService
	logger      *slog.Logger
}

func NewRouter(svcs *service.Services, authn *auth.Authenticator, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	r := gin.New()
	r.Use(
		requestID(),
		accessLog(logger),
		recovery(logger),
		securityHeaders(),
		cors(opts.ClientURL),
	)

	api := &API{
		accounts:    svcs.Accounts,
		generations: svcs.Generations,
		templates:   svcs.Templates,
		admin:       svcs.Admin,
		logger:      logger,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.registerRoutes(r.Group("/api"), authn)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func (api *API) registerRoutes(r *gin.RouterGroup, authn *auth.Authenticator) {
	requireUser := auth.RequireUser(authn)

	a := r.Group("/auth")
	a.POST("/register", api.register)
	a.POST("/login", api.login)
	a.GET("/me", requireUser, api.me)
	a.PUT("/profile", requireUser, api.updateProfile)

	content := r.Group("/content", requireUser)
	content.POST("/generate", api.generate)
	content.GET("/history", api.history)
	content.GET("/:id", api.getGeneration)
	content.PATCH("/:id/favorite", api.toggleFavorite)
	content.DELETE("/:id", api.deleteGeneration)

	templates := r.Group("/templates", requireUser)
	templates.GET("", api.listTemplates)
	templates.GET("/type/:contentType", api.listTemplatesByType)
	templates.GET("/:id", api.getTemplate)

	admin := r.Group("/admin", requireUser, auth.RequireAdminRole())
	admin.GET("/stats", api.stats)
	admin.GET("/users", api.listUsers)
	admin.PATCH("/users/:id/credits", api.setCredits)
	admin.PATCH("/users/:id/role", api.setRole)
	admin.DELETE("/users/:id", api.deleteUser)
	admin.GET("/templates", api.adminListTemplates)
	admin.POST("/templates", api.createTemplate)
	admin.PUT("/templates/:id", api.updateTemplate)
	admin.DELETE("/templates/:id", api.deleteTemplate)
	admin.DELETE("/generations/:id", api.adminDeleteGeneration)
	admin.GET("/settings", api.listSettings)
	admin.PUT("/settings/:key", api.setSetting)
}
