package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// Ensure the Postgres repositories satisfy their interfaces.
var (
	_ CatalogRepository = (*PostgresCatalogRepository)(nil)
	_ OrderRepository   = (*PostgresOrderRepository)(nil)
	_ ProfileRepository = (*PostgresProfileRepository)(nil)
)

// CatalogRepository is the read side of the product catalog.
type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetByIDs returns the products that still exist among ids, in one query.
	GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListByCategorySlug(ctx context.Context, slug string) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
}

// OrderRepository persists placed orders.
type OrderRepository interface {
	// CreateWithItems stores order and all of its items atomically and fills
	// in the generated ids and timestamps.
	CreateWithItems(ctx context.Context, order *models.Order) error
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	RegisterUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	DeleteUser(ctx context.Context, userID int64) error
}
