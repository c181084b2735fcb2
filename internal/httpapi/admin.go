package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/service"
)

func (api *API) stats(c *gin.Context) {
	st, err := api.admin.Stats(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (api *API) listUsers(c *gin.Context) {
	page, err := api.admin.ListUsers(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"), c.Query("search"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (api *API) setCredits(c *gin.Context) {
	id, ok := api.pathID(c, "User not found")
	if !ok {
		return
	}
	var payload struct {
		Credits *int64 `json:"credits"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Credits == nil {
		api.validationError(c, "Invalid credits value")
		return
	}
	u, err := api.admin.SetCredits(c.Request.Context(), id, *payload.Credits)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credits updated", "user": u})
}

func (api *API) setRole(c *gin.Context) {
	id, ok := api.pathID(c, "User not found")
	if !ok {
		return
	}
	var payload struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "Invalid role")
		return
	}
	u, err := api.admin.SetRole(c.Request.Context(), id, payload.Role)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "user": u})
}

func (api *API) deleteUser(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	id, ok := api.pathID(c, "User not found")
	if !ok {
		return
	}
	if err := api.admin.DeleteUser(c.Request.Context(), p.UserID, id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// templatePayload is the admin create/replace body.
type templatePayload struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	ContentType    string   `json:"content_type"`
	PromptTemplate string   `json:"prompt_template"`
	Icon           string   `json:"icon"`
	IsActive       flexBool `json:"is_active"`
}

func (p templatePayload) input() service.TemplateInput {
	return service.TemplateInput{
		Name:           p.Name,
		Description:    p.Description,
		ContentType:    p.ContentType,
		PromptTemplate: p.PromptTemplate,
		Icon:           p.Icon,
		IsActive:       p.IsActive.value,
	}
}

func (api *API) bindTemplate(c *gin.Context) (service.TemplateInput, bool) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, bindMessage(err))
		return service.TemplateInput{}, false
	}
	return payload.input(), true
}

func (api *API) adminListTemplates(c *gin.Context) {
	tpls, err := api.admin.ListTemplates(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpls)
}

func (api *API) createTemplate(c *gin.Context) {
	in, ok := api.bindTemplate(c)
	if !ok {
		return
	}
	t, err := api.admin.CreateTemplate(c.Request.Context(), in)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (api *API) updateTemplate(c *gin.Context) {
	id, ok := api.pathID(c, "Template not found")
	if !ok {
		return
	}
	in, ok := api.bindTemplate(c)
	if !ok {
		return
	}
	t, err := api.admin.UpdateTemplate(c.Request.Context(), id, in)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (api *API) deleteTemplate(c *gin.Context) {
	id, ok := api.pathID(c, "Template not found")
	if !ok {
		return
	}
	if err := api.admin.DeleteTemplate(c.Request.Context(), id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

func (api *API) adminDeleteGeneration(c *gin.Context) {
	id, ok := api.pathID(c, "Generation not found")
	if !ok {
		return
	}
	if err := api.admin.DeleteGeneration(c.Request.Context(), id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Generation deleted"})
}

func (api *API) listSettings(c *gin.Context) {
	settings, err := api.admin.ListSettings(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (api *API) setSetting(c *gin.Context) {
	var payload struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "Invalid request body")
		return
	}
	s, err := api.admin.SetSetting(c.Request.Context(), c.Param("key"), payload.Value)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
