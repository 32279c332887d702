package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

const productSelect = `
		SELECT p.id, p.order_code, p.ean13, p.description, p.image, p.price, COALESCE(c.name, '')
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id`

// PostgresCatalogRepository reads products and categories.
type PostgresCatalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresCatalogRepository(db *sql.DB, logger *zap.Logger) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db, logger: logger}
}

func (r *PostgresCatalogRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// GetByIDs resolves a whole cart in one round trip. Ids with no matching row
// are simply absent from the result.
func (r *PostgresCatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	r.logger.Debug("fetching products by id", zap.Int("count", len(ids)))

	rows, err := r.db.QueryContext(ctx, productSelect+` WHERE p.id = ANY($1) ORDER BY p.id`, pq.Array(ids))
	if err != nil {
		r.logger.Error("failed to fetch products", zap.Int64s("product_ids", ids), zap.Error(err))
		return nil, err
	}
	return collectProducts(rows)
}

func (r *PostgresCatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListByCategorySlug returns the products of one category. An unknown slug
// is ErrNotFound; a known but empty category is an empty list.
func (r *PostgresCatalogRepository) ListByCategorySlug(ctx context.Context, slug string) ([]models.Product, error) {
	var categoryID int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = $1`, slug).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, productSelect+` WHERE p.category_id = $1 ORDER BY p.order_code`, categoryID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Search does a case-insensitive substring match on description, order code
// and EAN-13.
func (r *PostgresCatalogRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx, productSelect+`
		WHERE p.description ILIKE $1 OR p.order_code ILIKE $1 OR p.ean13 ILIKE $1
		ORDER BY p.order_code`, pattern)
	if err != nil {
		r.logger.Error("product search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return collectProducts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.OrderCode, &p.EAN13, &p.Description, &p.ImageRef, &p.Price, &p.Category)
	return p, err
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
