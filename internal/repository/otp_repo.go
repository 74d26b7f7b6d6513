package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"society-auth/internal/domain"
)

// OtpRepository define el contrato de persistencia para codigos OTP.
type OtpRepository interface {
	Create(ctx context.Context, otp domain.OtpVerification) error
	// Claim marca como usado, en una sola sentencia atomica, el OTP vigente
	// que coincide con (phone, code). Devuelve pgx.ErrNoRows si no hay
	// coincidencia o si otra peticion concurrente ya lo consumio.
	Claim(ctx context.Context, phone, code string, now time.Time) (domain.OtpVerification, error)
}

// PgOtpRepository implementa OtpRepository usando pgxpool.
type PgOtpRepository struct {
	pool *pgxpool.Pool
}

func NewPgOtpRepository(pool *pgxpool.Pool) *PgOtpRepository {
	return &PgOtpRepository{pool: pool}
}

func (r *PgOtpRepository) Create(ctx context.Context, otp domain.OtpVerification) error {
	const query = `
		INSERT INTO otp_verifications (id, phone, code, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		otp.ID,
		otp.Phone,
		otp.Code,
		otp.ExpiresAt,
		otp.UsedAt,
		otp.CreatedAt,
	)
	return err
}

func (r *PgOtpRepository) Claim(ctx context.Context, phone, code string, now time.Time) (domain.OtpVerification, error) {
	// El UPDATE condicional es el punto de consumo: dos peticiones con el
	// mismo codigo no pueden marcar la misma fila dos veces.
	const query = `
		UPDATE otp_verifications
		SET used_at = $4
		WHERE id = (
			SELECT id FROM otp_verifications
			WHERE phone = $1 AND code = $2 AND used_at IS NULL AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND used_at IS NULL
		RETURNING id, phone, code, expires_at, used_at, created_at
	`
	var otp domain.OtpVerification
	err := r.pool.QueryRow(ctx, query, phone, code, now, now).Scan(
		&otp.ID,
		&otp.Phone,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.UsedAt,
		&otp.CreatedAt,
	)
	if err != nil {
		return domain.OtpVerification{}, err
	}
	return otp, nil
}
