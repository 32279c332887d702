package service

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

// CartView is what the shopper sees of their cart.
type CartView struct {
	Items []cart.Item
	Count int
	Total decimal.Decimal
}

func (v CartView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items []cart.Item `json:"items"`
		Count int         `json:"count"`
		Total string      `json:"total"`
	}{v.Items, v.Count, v.Total.StringFixed(2)})
}

// CartService resolves catalog products for cart changes.
type CartService struct {
	catalog repository.CatalogRepository
	logger  *zap.Logger
}

func NewCartService(catalog repository.CatalogRepository, logger *zap.Logger) *CartService {
	return &CartService{catalog: catalog, logger: logger}
}

// AddProduct adds or, with replace, sets the quantity of a catalog product.
// An unknown product yields apperrors.ErrNotFound and leaves c alone.
func (s *CartService) AddProduct(ctx context.Context, c *cart.Cart, productID int64, quantity int, replace bool) (*models.Product, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c.Add(*product, quantity, replace)

	op := "add"
	if replace {
		op = "update"
	}
	metrics.CartMutations.WithLabelValues(op).Inc()
	s.logger.Debug("cart updated",
		zap.String("op", op),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return product, nil
}

// RemoveProduct drops a product's line. The product has to exist in the
// catalog; a missing line is fine.
func (s *CartService) RemoveProduct(ctx context.Context, c *cart.Cart, productID int64) error {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return err
	}

	c.Remove(productID)
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

func (s *CartService) View(ctx context.Context, c *cart.Cart) (*CartView, error) {
	items, err := c.Items(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.Item{}
	}
	return &CartView{Items: items, Count: c.Len(), Total: c.TotalPrice()}, nil
}
