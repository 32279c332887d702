package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// RegisterUser handles POST /internal/v1/users. The auth gateway calls it
// when it provisions an account; the user's empty profile is created with it.
func (h *Handlers) RegisterUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.profiles.RegisterUser(c.Request.Context(), &user); err != nil {
		h.logger.Error("failed to register user", zap.String("username", user.Username), zap.Error(err))
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
