package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testOrder() *models.Order {
	return &models.Order{
		FirstName: "Anna",
		LastName:  "Berzina",
		Email:     "anna@example.com",
		Address:   "Brivibas 1, Riga",
		Items: []models.OrderItem{
			{ProductID: 1, Price: decimal.RequireFromString("10.00"), Quantity: 2},
			{ProductID: 2, Price: decimal.RequireFromString("5.50"), Quantity: 1},
		},
	}
}

func TestPostgresOrderRepository_CreateWithItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, zap.NewNop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(nil, "Anna", "Berzina", "anna@example.com", "", "", "Brivibas 1, Riga").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(10), int64(1), sqlmock.AnyArg(), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(10), int64(2), sqlmock.AnyArg(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	order := testOrder()
	require.NoError(t, repo.CreateWithItems(context.Background(), order))

	assert.Equal(t, int64(10), order.ID)
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, int64(100), order.Items[0].ID)
	assert.Equal(t, int64(10), order.Items[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CreateWithItems_AttachesUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO order_items`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	userID := int64(7)
	order := testOrder()
	order.UserID = &userID

	require.NoError(t, repo.CreateWithItems(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CreateWithItems_RollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	order := testOrder()
	err := repo.CreateWithItems(context.Background(), order)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 2")
	assert.Zero(t, order.ID)
	assert.Zero(t, order.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CreateWithItems_BeginFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, zap.NewNop())

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.CreateWithItems(context.Background(), testOrder())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CreateWithItems_NoItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, zap.NewNop())

	err := repo.CreateWithItems(context.Background(), &models.Order{FirstName: "A"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_code", "ean13", "description", "image", "price", "category"})
}

func TestPostgresCatalogRepository_GetByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	mock.ExpectQuery(`WHERE p.id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(productRows().
			AddRow(int64(1), "EN-1", "4750000000001", "Door hinge", "", "10.00", "Hardware").
			AddRow(int64(3), "EN-3", "", "Handle", "", "2.50", ""))

	products, err := repo.GetByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Door hinge", products[0].Description)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "Hardware", products[0].Category)
	assert.Equal(t, int64(3), products[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogRepository_GetByIDs_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	products, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	mock.ExpectQuery(`WHERE p.id = \$1`).WithArgs(int64(9)).WillReturnRows(productRows())

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresCatalogRepository_ListByCategorySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs("hinges").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectQuery(`WHERE p.category_id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(productRows().AddRow(int64(1), "EN-1", "", "Door hinge", "", "10.00", "Hinges"))

	products, err := repo.ListByCategorySlug(context.Background(), "hinges")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.ListByCategorySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogRepository_SearchEscapesPattern(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	mock.ExpectQuery(`ILIKE \$1`).
		WithArgs(`%50\%%`).
		WillReturnRows(productRows())

	products, err := repo.Search(context.Background(), " 50% ")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogRepository_SearchBlankQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCatalogRepository(db, zap.NewNop())

	products, err := repo.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_GetByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectQuery(`FROM users u`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "email", "company_name",
			"registration_number", "vat_number", "address", "phone_number",
		}).AddRow(int64(7), "Anna", "Berzina", "anna@example.com", "SIA Kvits", "4000", "LV4000", "Riga", "+371"))

	p, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "SIA Kvits", p.CompanyName)
	assert.Equal(t, "+371", p.Phone)

	mock.ExpectQuery(`FROM users u`).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByUserID(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresProfileRepository_RegisterUserCreatesProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("anna", "Anna", "Berzina", "anna@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "anna", FirstName: "Anna", LastName: "Berzina", Email: "anna@example.com"}
	require.NoError(t, repo.RegisterUser(context.Background(), user))
	assert.Equal(t, int64(21), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_RegisterUserRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(22)))
	mock.ExpectExec(`INSERT INTO profiles`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	user := &models.User{Username: "bob"}
	assert.Error(t, repo.RegisterUser(context.Background(), user))
	assert.Zero(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_RegisterUserDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.RegisterUser(context.Background(), &models.User{Username: "anna"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_UpdateProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).
		WithArgs(int64(7), "Anna", "Berzina", "anna@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(int64(7), "SIA Kvits", "4000", "LV4000", "Riga", "+371").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateProfile(context.Background(), &models.Profile{
		UserID: 7, FirstName: "Anna", LastName: "Berzina", Email: "anna@example.com",
		CompanyName: "SIA Kvits", RegistrationNumber: "4000", VATNumber: "LV4000", Address: "Riga", Phone: "+371",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_UpdateProfileUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateProfile(context.Background(), &models.Profile{UserID: 8})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_DeleteUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, zap.NewNop())

	mock.ExpectExec(`DELETE FROM users`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteUser(context.Background(), 7))

	mock.ExpectExec(`DELETE FROM users`).WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteUser(context.Background(), 8), apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
