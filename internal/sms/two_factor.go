package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twoFactorBase = "https://2factor.in/API/V1"

// TwoFactorSender envia el OTP via la API de 2Factor.in (SMS y/o llamada de voz).
type TwoFactorSender struct {
	apiKey   string
	delivery string
	client   *http.Client
}

func NewTwoFactorSender(apiKey, delivery string) *TwoFactorSender {
	delivery = strings.ToLower(strings.TrimSpace(delivery))
	if delivery == "" {
		delivery = "sms"
	}
	return &TwoFactorSender{
		apiKey:   apiKey,
		delivery: delivery,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TwoFactorSender) SendOTP(ctx context.Context, phone, code string, _ time.Duration) error {
	mobile := formatMobileIndia(phone)
	if s.delivery == "sms" || s.delivery == "both" {
		if err := s.send(ctx, "SMS", mobile, code); err != nil {
			return err
		}
	}
	if s.delivery == "voice" || s.delivery == "both" {
		if err := s.send(ctx, "VOICE", mobile, code); err != nil {
			return err
		}
	}
	return nil
}

func (s *TwoFactorSender) send(ctx context.Context, channel, mobile, code string) error {
	endpoint := fmt.Sprintf("%s/%s/%s/%s/%s",
		twoFactorBase,
		url.PathEscape(s.apiKey),
		channel,
		url.PathEscape(mobile),
		url.PathEscape(code),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("2factor api: status %d", resp.StatusCode)
	}
	return nil
}

// formatMobileIndia deja solo digitos; un numero indio de 10 digitos recibe
// el prefijo 91.
func formatMobileIndia(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 && strings.ContainsRune("6789", rune(digits[0])) {
		return "91" + digits
	}
	if len(digits) >= 12 && strings.HasPrefix(digits, "91") {
		return digits
	}
	if len(digits) >= 10 {
		return digits
	}
	return "91" + digits
}
