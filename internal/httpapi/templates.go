package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (api *API) listTemplates(c *gin.Context) {
	api.writeTemplates(c, c.Query("type"))
}

func (api *API) listTemplatesByType(c *gin.Context) {
	api.writeTemplates(c, c.Param("contentType"))
}

func (api *API) writeTemplates(c *gin.Context, contentType string) {
	tpls, err := api.templates.List(c.Request.Context(), contentType)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpls)
}

func (api *API) getTemplate(c *gin.Context) {
	id, ok := api.pathID(c, "Template not found")
	if !ok {
		return
	}
	t, err := api.templates.Get(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
