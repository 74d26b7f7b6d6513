package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"society-auth/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByPhone(ctx context.Context, phone string) (domain.User, error)
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, phone, name, enabled, account_locked_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		nullIfEmpty(user.Email),
		nullIfEmpty(user.Phone),
		user.Name,
		user.Enabled,
		user.AccountLockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, COALESCE(email, ''), COALESCE(phone, ''), name, enabled, account_locked_until, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	const query = `
		SELECT id, COALESCE(email, ''), COALESCE(phone, ''), name, enabled, account_locked_until, created_at, updated_at
		FROM users
		WHERE phone = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone))
}

func (r *PgUserRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error {
	const query = `
		UPDATE users SET name = $2, updated_at = $3 WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.Name,
		&u.Enabled,
		&u.AccountLockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
