package domain

import "time"

// OtpVerification es un codigo de un solo uso ligado a un telefono normalizado.
type OtpVerification struct {
	ID        string
	Phone     string
	Code      string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
