package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// CheckoutResponse is returned for a placed order.
type CheckoutResponse struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
	Warning string `json:"warning,omitempty"`
}

// GetCheckout handles GET /api/v1/checkout
func (h *Handlers) GetCheckout(c *gin.Context) {
	v, err := h.loadVisitor(c)
	if err != nil {
		handleError(c, err)
		return
	}

	if v.cart.IsEmpty() {
		redirectToCatalog(c)
		return
	}

	view, err := h.carts.View(c.Request.Context(), v.cart)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":     view,
		"defaults": h.checkout.DefaultDetails(c.Request.Context(), middleware.CurrentUserID(c)),
	})
}

// PostCheckout handles POST /api/v1/checkout
func (h *Handlers) PostCheckout(c *gin.Context) {
	v, err := h.loadVisitor(c)
	if err != nil {
		handleError(c, err)
		return
	}

	// An empty body is a form with every field missing; validation reports
	// them one by one.
	var details models.CustomerDetails
	if err := c.ShouldBindJSON(&details); err != nil && !errors.Is(err, io.EOF) && !v.cart.IsEmpty() {
		h.logger.Debug("unreadable checkout body", zap.Error(err))
		handleError(c, bodyError(err))
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), v.cart, details, middleware.CurrentUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.saveVisitor(c, v); err != nil {
		// The order is committed; a stale cart is the lesser problem.
		h.logger.Error("order placed but cart not cleared",
			zap.Int64("order_id", result.Order.ID),
			zap.String("session_id", v.session.ID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		OrderID: result.Order.ID,
		Total:   result.Order.TotalCost().StringFixed(2),
		Warning: result.Warning,
	})
}

// bodyError turns a decode failure into a field error. A value of the wrong
// type is reported against its field, anything else against the body.
func bodyError(err error) *apperrors.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.NewValidationError(typeErr.Field, "invalid value")
	}
	return apperrors.NewValidationError("body", "expected a JSON object")
}
