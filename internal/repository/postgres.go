package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithItems inserts the order row and one row per item inside a single
// transaction. On any error nothing is committed and order is left without
// an id.
func (r *PostgresOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("order has no items")
	}

	r.logger.Debug("creating order", zap.Int("items", len(order.Items)))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var userID sql.NullInt64
	if order.UserID != nil {
		userID = sql.NullInt64{Int64: *order.UserID, Valid: true}
	}

	var (
		orderID int64
		created models.Order
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, first_name, last_name, email, phone_number, company_name, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		userID,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Phone,
		order.CompanyName,
		order.Address,
	).Scan(&orderID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	itemIDs := make([]int64, len(order.Items))
	for i, item := range order.Items {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			orderID,
			item.ProductID,
			item.Price,
			item.Quantity,
		).Scan(&itemIDs[i])
		if err != nil {
			r.logger.Error("failed to insert order item",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			return fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit order", zap.Int64("order_id", orderID), zap.Error(err))
		return fmt.Errorf("commit order: %w", err)
	}

	order.ID = orderID
	order.CreatedAt = created.CreatedAt
	order.UpdatedAt = created.UpdatedAt
	for i := range order.Items {
		order.Items[i].ID = itemIDs[i]
		order.Items[i].OrderID = orderID
	}

	r.logger.Info("order created",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(order.Items)),
	)
	return nil
}
