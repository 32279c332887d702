package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
)

// AddToCartRequest mirrors the add-to-cart form: a quantity and whether it
// replaces the current one.
type AddToCartRequest struct {
	Quantity int  `json:"quantity" binding:"required,min=1,max=1000"`
	Update   bool `json:"update"`
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	v, err := h.loadVisitor(c)
	if err != nil {
		handleError(c, err)
		return
	}

	view, err := h.carts.View(c.Request.Context(), v.cart)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddToCart handles POST /api/v1/cart/items/:product_id
func (h *Handlers) AddToCart(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid add to cart request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("quantity must be a whole number between 1 and %d", cart.MaxQuantity)})
		return
	}

	v, err := h.loadVisitor(c)
	if err != nil {
		handleError(c, err)
		return
	}

	if _, err := h.carts.AddProduct(c.Request.Context(), v.cart, productID, req.Quantity, req.Update); err != nil {
		handleError(c, err)
		return
	}

	h.respondWithCart(c, v)
}

// RemoveFromCart handles DELETE /api/v1/cart/items/:product_id
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	v, err := h.loadVisitor(c)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.carts.RemoveProduct(c.Request.Context(), v.cart, productID); err != nil {
		handleError(c, err)
		return
	}

	h.respondWithCart(c, v)
}

// respondWithCart persists the visitor and answers with the cart view.
func (h *Handlers) respondWithCart(c *gin.Context, v *visitor) {
	if err := h.saveVisitor(c, v); err != nil {
		h.logger.Error("failed to save cart", zap.String("session_id", v.session.ID), zap.Error(err))
		handleError(c, err)
		return
	}

	view, err := h.carts.View(c.Request.Context(), v.cart)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
