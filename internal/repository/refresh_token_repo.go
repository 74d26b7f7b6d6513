package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"society-auth/internal/domain"
)

// RefreshTokenRepository define el contrato de persistencia para refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	// Claim revoca, en una sola sentencia atomica, el refresh token vigente
	// cuyo hash coincide. Devuelve pgx.ErrNoRows si no hay coincidencia o si
	// otra peticion concurrente ya lo revoco.
	Claim(ctx context.Context, tokenHash string, now time.Time) (domain.RefreshToken, error)
}

// PgRefreshTokenRepository implementa RefreshTokenRepository usando pgxpool.
type PgRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRefreshTokenRepository(pool *pgxpool.Pool) *PgRefreshTokenRepository {
	return &PgRefreshTokenRepository{pool: pool}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	return err
}

func (r *PgRefreshTokenRepository) Claim(ctx context.Context, tokenHash string, now time.Time) (domain.RefreshToken, error) {
	// token_hash es UNIQUE; el predicado revoked_at IS NULL hace el UPDATE
	// un compare-and-set de un solo ganador.
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
		RETURNING id, user_id, token_hash, expires_at, revoked_at, created_at
	`
	var token domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return token, nil
}
