package domain

import "time"

// RefreshToken guarda solamente el hash SHA-256 del secreto; el secreto crudo
// nunca se persiste.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
