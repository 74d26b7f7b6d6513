package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode"

	"go.uber.org/zap"
)

type failingSender struct {
	calls int
}

func (s *failingSender) SendOTP(_ context.Context, _ string, _ string, _ time.Duration) error {
	s.calls++
	return errors.New("provider down")
}

type recordingSender struct {
	phone string
	code  string
}

func (s *recordingSender) SendOTP(_ context.Context, phone, code string, _ time.Duration) error {
	s.phone = phone
	s.code = code
	return nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+911234567890", "911234567890"},
		{"  +91 1234567890  ", "91 1234567890"},
		{"911234567890", "911234567890"},
		{"  ", ""},
		{"", ""},
		{"+", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, in := range []string{"+911234567890", " 911234567890 ", "", "+"} {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestOtpService_CreateAndSendPersistsNormalized(t *testing.T) {
	repo := newMockOtpRepo()
	sender := &recordingSender{}
	svc := NewOtpService(zap.NewNop(), repo, sender, nil, 6, 10*time.Minute)

	if err := svc.CreateAndSend(context.Background(), "+911234567890"); err != nil {
		t.Fatalf("create and send: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected one persisted otp, got %d", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Phone != "911234567890" {
		t.Fatalf("expected normalized phone, got %q", row.Phone)
	}
	if len(row.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", row.Code)
	}
	for _, r := range row.Code {
		if !unicode.IsDigit(r) {
			t.Fatalf("expected numeric code, got %q", row.Code)
		}
	}
	if row.UsedAt != nil {
		t.Fatalf("new otp must be unused")
	}
	if !row.ExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("expected future expiry")
	}
	if sender.phone != "911234567890" || sender.code != row.Code {
		t.Fatalf("sender got %q/%q, want %q/%q", sender.phone, sender.code, row.Phone, row.Code)
	}
}

func TestOtpService_RejectsBlankPhone(t *testing.T) {
	svc := NewOtpService(zap.NewNop(), newMockOtpRepo(), &recordingSender{}, nil, 6, 10*time.Minute)
	for _, in := range []string{"", "   ", " + "} {
		if err := svc.CreateAndSend(context.Background(), in); !errors.Is(err, ErrPhoneRequired) {
			t.Fatalf("expected ErrPhoneRequired for %q, got %v", in, err)
		}
	}
}

func TestOtpService_SendFailureDoesNotRollBack(t *testing.T) {
	repo := newMockOtpRepo()
	sender := &failingSender{}
	svc := NewOtpService(zap.NewNop(), repo, sender, nil, 6, 10*time.Minute)

	if err := svc.CreateAndSend(context.Background(), "911234567890"); err != nil {
		t.Fatalf("delivery failure must not surface: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected one send attempt, got %d", sender.calls)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected otp to remain persisted, got %d rows", len(repo.rows))
	}
}

func TestOtpService_ClampsCodeLength(t *testing.T) {
	for _, tc := range []struct {
		configured int
		want       int
	}{
		{2, 4},
		{4, 4},
		{8, 8},
		{12, 8},
	} {
		repo := newMockOtpRepo()
		svc := NewOtpService(zap.NewNop(), repo, &recordingSender{}, nil, tc.configured, 10*time.Minute)
		if err := svc.CreateAndSend(context.Background(), "911234567890"); err != nil {
			t.Fatalf("create and send: %v", err)
		}
		if got := len(repo.rows[0].Code); got != tc.want {
			t.Fatalf("length %d: expected %d-digit code, got %d", tc.configured, tc.want, got)
		}
	}
}

func TestOtpService_RateLimited(t *testing.T) {
	repo := newMockOtpRepo()
	svc := NewOtpService(zap.NewNop(), repo, &recordingSender{}, denyAllLimiter{}, 6, 10*time.Minute)

	if err := svc.CreateAndSend(context.Background(), "911234567890"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("rate-limited request must not persist an otp")
	}
}

func TestOTPRateLimiter_Allow(t *testing.T) {
	l := NewOTPRateLimiter(time.Minute, 2)
	if !l.Allow("911234567890") || !l.Allow("911234567890") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("911234567890") {
		t.Fatalf("expected third request within window to be denied")
	}
	if !l.Allow("919999999999") {
		t.Fatalf("expected other keys unaffected")
	}
}
