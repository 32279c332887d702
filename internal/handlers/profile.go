package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// GetProfile handles GET /api/v1/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	userID, ok := signedInUser(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID, ok := signedInUser(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.logger.Debug("invalid profile update", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	profile.UserID = userID

	if err := h.profiles.UpdateProfile(c.Request.Context(), &profile); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/v1/profile
func (h *Handlers) DeleteProfile(c *gin.Context) {
	userID, ok := signedInUser(c)
	if !ok {
		return
	}

	if err := h.profiles.DeleteUser(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func signedInUser(c *gin.Context) (int64, bool) {
	id := middleware.CurrentUserID(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return 0, false
	}
	return *id, true
}
