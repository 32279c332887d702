package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// PostgresProfileRepository reads account and profile data used to pre-fill
// checkout, and provisions, edits and removes both together.
type PostgresProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresProfileRepository(db *sql.DB, logger *zap.Logger) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db, logger: logger}
}

// GetByUserID joins the user with its profile. A user without a profile row
// still resolves, with empty profile fields.
func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email,
		       COALESCE(p.company_name, ''), COALESCE(p.registration_number, ''),
		       COALESCE(p.vat_number, ''), COALESCE(p.address, ''), COALESCE(p.phone_number, '')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1`, userID,
	).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.CompanyName,
		&p.RegistrationNumber,
		&p.VATNumber,
		&p.Address,
		&p.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch profile", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// RegisterUser inserts the user and its empty profile in one transaction.
func (r *PostgresProfileRepository) RegisterUser(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, first_name, last_name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		user.Username, user.FirstName, user.LastName, user.Email,
	).Scan(&id)
	if isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if err := createProfile(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}

	user.ID = id
	r.logger.Info("user registered", zap.Int64("user_id", id))
	return nil
}

// UpdateProfile saves the account and profile fields of p.UserID in one
// transaction, creating the profile row if the user never got one.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, email = $4
		WHERE id = $1`,
		p.UserID, p.FirstName, p.LastName, p.Email,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", p.UserID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update user %d: %w", p.UserID, err)
	} else if n == 0 {
		return apperrors.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, company_name, registration_number, vat_number, address, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			registration_number = EXCLUDED.registration_number,
			vat_number = EXCLUDED.vat_number,
			address = EXCLUDED.address,
			phone_number = EXCLUDED.phone_number`,
		p.UserID, p.CompanyName, p.RegistrationNumber, p.VATNumber, p.Address, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("save profile for user %d: %w", p.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}

	r.logger.Info("profile updated", zap.Int64("user_id", p.UserID))
	return nil
}

// DeleteUser removes the account. Its profile goes with it; past orders stay
// and lose their link to the user.
func (r *PostgresProfileRepository) DeleteUser(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("user deleted", zap.Int64("user_id", userID))
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// createProfile gives a freshly inserted user its profile row.
func createProfile(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("create profile for user %d: %w", userID, err)
	}
	return nil
}
