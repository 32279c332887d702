package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// ListCategories handles GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListCategoryProducts handles GET /api/v1/categories/:slug/products
func (h *Handlers) ListCategoryProducts(c *gin.Context) {
	products, err := h.catalog.ListByCategorySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Search handles GET /api/v1/search?q=
func (h *Handlers) Search(c *gin.Context) {
	query := c.Query("q")

	products, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"products": products,
	})
}
