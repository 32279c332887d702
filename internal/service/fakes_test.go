package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

type fakeCatalog struct {
	products map[int64]models.Product
	err      error
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[int64]models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeCatalog) ListByCategorySlug(ctx context.Context, slug string) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]models.Product, error) {
	return nil, nil
}

type fakeOrders struct {
	created []*models.Order
	err     error
	nextID  int64
}

func (f *fakeOrders) CreateWithItems(ctx context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	order.ID = f.nextID
	f.created = append(f.created, order)
	return nil
}

type fakeProfiles struct {
	profiles map[int64]*models.Profile
	err      error
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

type fakeNotifier struct {
	sent []*models.Order
	err  error
}

func (f *fakeNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, order)
	return nil
}

type fakePublisher struct {
	published []*models.Order
	err       error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	f.published = append(f.published, order)
	return f.err
}

var errBoom = errors.New("boom")

func testProduct(id int64, price string) models.Product {
	return models.Product{ID: id, OrderCode: "EN-" + price, Description: "Product", Price: decimal.RequireFromString(price)}
}
