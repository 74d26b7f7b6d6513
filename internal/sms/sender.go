package sms

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender define la interfaz para envio de codigos OTP por telefono.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string, expiry time.Duration) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendOTP(_ context.Context, _ string, _ string, _ time.Duration) error {
	if s.reason == "" {
		return errors.New("sms sender disabled")
	}
	return errors.New(s.reason)
}

// logSender escribe el codigo en el log en vez de enviarlo; util en
// desarrollo cuando no hay proveedor configurado.
type logSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) SendOTP(_ context.Context, phone, code string, expiry time.Duration) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Info("otp code (sms provider not configured)",
		zap.String("phone", phone),
		zap.String("code", code),
		zap.Duration("valid_for", expiry),
	)
	return nil
}
