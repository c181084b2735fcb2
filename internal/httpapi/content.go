package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/service"
)

func (api *API) generate(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	var payload struct {
		TemplateID  optionalID     `json:"templateId"`
		Prompt      string         `json:"prompt"`
		ContentType string         `json:"contentType"`
		Parameters  map[string]any `json:"parameters"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, bindMessage(err))
		return
	}
	res, err := api.generations.Generate(c.Request.Context(), p.UserID, service.GenerateRequest{
		TemplateID:  payload.TemplateID.value,
		Prompt:      payload.Prompt,
		ContentType: payload.ContentType,
		Parameters:  stringParams(payload.Parameters),
	})
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// stringParams accepts numbers and booleans as parameter values, the way
// form inputs often arrive.
func stringParams(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case nil:
			continue
		case string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

func (api *API) history(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	q := service.HistoryQuery{
		Page:        queryInt(c, "page"),
		Limit:       queryInt(c, "limit"),
		ContentType: c.Query("contentType"),
	}
	if c.Query("favorite") == "true" {
		fav := true
		q.Favorite = &fav
	}
	page, err := api.generations.History(c.Request.Context(), p.UserID, q)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (api *API) getGeneration(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	id, ok := api.pathID(c, "Generation not found")
	if !ok {
		return
	}
	g, err := api.generations.Get(c.Request.Context(), p.UserID, id)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (api *API) toggleFavorite(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	id, ok := api.pathID(c, "Generation not found")
	if !ok {
		return
	}
	fav, err := api.generations.ToggleFavorite(c.Request.Context(), p.UserID, id)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": fav})
}

func (api *API) deleteGeneration(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	id, ok := api.pathID(c, "Generation not found")
	if !ok {
		return
	}
	if err := api.generations.Delete(c.Request.Context(), p.UserID, id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Generation deleted"})
}
