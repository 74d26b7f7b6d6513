package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"society-auth/internal/domain"
	"society-auth/internal/repository"
	"society-auth/internal/sms"
)

var (
	ErrPhoneRequired = errors.New("phone required")
	ErrRateLimited   = errors.New("rate limited")
)

// OtpService genera codigos OTP, los persiste y delega el envio por SMS.
type OtpService struct {
	logger     *zap.Logger
	otps       repository.OtpRepository
	sender     sms.Sender
	limiter    OTPRateLimiter
	codeLength int
	expiry     time.Duration
}

func NewOtpService(logger *zap.Logger, otps repository.OtpRepository, sender sms.Sender, limiter OTPRateLimiter, codeLength int, expiry time.Duration) *OtpService {
	if codeLength < 4 {
		codeLength = 4
	}
	if codeLength > 8 {
		codeLength = 8
	}
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	return &OtpService{
		logger:     logger,
		otps:       otps,
		sender:     sender,
		limiter:    limiter,
		codeLength: codeLength,
		expiry:     expiry,
	}
}

// NormalizePhone canonicaliza un telefono: recorta espacios y quita un "+"
// inicial. Es idempotente y no valida nada mas; la cadena vacia queda vacia.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	return strings.TrimSpace(s)
}

// CreateAndSend genera un codigo para el telefono, lo persiste y lo envia.
// Un fallo de envio se degrada a log: el codigo ya persistido sigue valido.
func (s *OtpService) CreateAndSend(ctx context.Context, phone string) error {
	if s.otps == nil {
		return errors.New("otp service not configured")
	}

	normalized := NormalizePhone(phone)
	if normalized == "" {
		return ErrPhoneRequired
	}

	if s.limiter != nil && !s.limiter.Allow(normalized) {
		return ErrRateLimited
	}

	code, err := s.generateCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	otp := domain.OtpVerification{
		ID:        uuid.NewString(),
		Phone:     normalized,
		Code:      code,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return err
	}

	if s.sender == nil {
		return nil
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.sender.SendOTP(sendCtx, normalized, code, s.expiry); err != nil {
		if s.logger != nil {
			s.logger.Warn("otp send failed, falling back to log",
				zap.Error(err),
				zap.String("phone", normalized),
				zap.String("code", code),
				zap.Duration("valid_for", s.expiry),
			)
		}
	}
	return nil
}

func (s *OtpService) generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.codeLength, n.Int64()), nil
}
