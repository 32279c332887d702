package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/session"
)

// catalogPath is where shoppers are sent when there is nothing to check out.
const catalogPath = "/api/v1/categories"

const emptyCartWarning = "Your cart is empty. Add some products before checking out."

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the storefront.
type Handlers struct {
	catalog     repository.CatalogRepository
	profiles    repository.ProfileRepository
	carts       *service.CartService
	checkout    *service.CheckoutService
	sessions    session.Store
	sessionCfg  config.SessionConfig
	readyChecks map[string]ReadinessCheck
	logger      *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	catalog repository.CatalogRepository,
	profiles repository.ProfileRepository,
	carts *service.CartService,
	checkout *service.CheckoutService,
	sessions session.Store,
	sessionCfg config.SessionConfig,
	readyChecks map[string]ReadinessCheck,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		catalog:     catalog,
		profiles:    profiles,
		carts:       carts,
		checkout:    checkout,
		sessions:    sessions,
		sessionCfg:  sessionCfg,
		readyChecks: readyChecks,
		logger:      logger,
	}
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
		return
	}

	if errors.Is(err, apperrors.ErrEmptyCart) {
		redirectToCatalog(c)
		return
	}

	if ve, ok := apperrors.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}

	if apperrors.IsPersistence(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the shop is temporarily unavailable, please try again"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// redirectToCatalog answers 303 with a warning the client can show.
func redirectToCatalog(c *gin.Context) {
	c.Header("Location", catalogPath)
	c.JSON(http.StatusSeeOther, gin.H{"warning": emptyCartWarning})
}
