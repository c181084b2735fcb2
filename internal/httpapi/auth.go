package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/service"
)

func (api *API) register(c *gin.Context) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "All fields are required")
		return
	}
	res, err := api.accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
	})
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (api *API) login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "Email and password are required")
		return
	}
	res, err := api.accounts.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (api *API) me(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

func (api *API) updateProfile(c *gin.Context) {
	p, ok := api.principal(c)
	if !ok {
		return
	}
	var payload struct {
		Name            string `json:"name"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "Invalid request body")
		return
	}
	u, err := api.accounts.UpdateProfile(c.Request.Context(), p.UserID, service.ProfileInput{
		Name:            payload.Name,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	})
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": u})
}
