package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"society-auth/internal/domain"
	"society-auth/internal/repository"
)

var (
	ErrCredentialsRequired = errors.New("phone and otp required")
	ErrRefreshRequired     = errors.New("refresh_token required")
	ErrUserNotFound        = errors.New("user not found")
	// ErrInvalidOTP y ErrInvalidRefresh son deliberadamente genericos: el
	// llamador no puede distinguir codigo erroneo, expirado o ya usado.
	ErrInvalidOTP     = errors.New("invalid_or_expired_otp")
	ErrInvalidRefresh = errors.New("invalid_or_expired_refresh_token")
)

// AuthService coordina el login por OTP y la rotacion de refresh tokens.
type AuthService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	otps    repository.OtpRepository
	refresh repository.RefreshTokenRepository
	tokens  *TokenService
}

// LoginResult es el par de credenciales mas la vista publica del usuario.
type LoginResult struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int64             `json:"expires_in"`
	User         domain.PublicUser `json:"user"`
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, otps repository.OtpRepository, refresh repository.RefreshTokenRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		logger:  logger,
		users:   users,
		otps:    otps,
		refresh: refresh,
		tokens:  tokens,
	}
}

// Login verifica y consume un OTP, resuelve (o crea) el usuario por telefono
// y emite un par de credenciales.
func (s *AuthService) Login(ctx context.Context, phone, otp string) (LoginResult, error) {
	if s.users == nil || s.otps == nil || s.refresh == nil || s.tokens == nil {
		return LoginResult{}, errors.New("auth service not configured")
	}

	normalized := NormalizePhone(phone)
	code := strings.TrimSpace(otp)
	if normalized == "" || code == "" {
		return LoginResult{}, ErrCredentialsRequired
	}

	now := time.Now().UTC()
	if _, err := s.otps.Claim(ctx, normalized, code, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrInvalidOTP
		}
		return LoginResult{}, err
	}

	user, err := s.users.GetByPhone(ctx, normalized)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, err
		}
		user, err = s.createUserByPhone(ctx, normalized)
		if err != nil {
			return LoginResult{}, err
		}
	}

	access, rawRefresh, err := s.issueCredentials(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  access,
		RefreshToken: rawRefresh,
		ExpiresIn:    s.tokens.AccessTTLSeconds(),
		User:         user.Public(),
	}, nil
}

// Refresh consume un refresh token vigente y emite un par de reemplazo para
// el mismo usuario. El token presentado queda revocado aunque la emision del
// reemplazo falle.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (LoginResult, error) {
	if s.users == nil || s.refresh == nil || s.tokens == nil {
		return LoginResult{}, errors.New("auth service not configured")
	}

	raw := strings.TrimSpace(rawToken)
	if raw == "" {
		return LoginResult{}, ErrRefreshRequired
	}

	now := time.Now().UTC()
	claimed, err := s.refresh.Claim(ctx, HashRefreshToken(raw), now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrInvalidRefresh
		}
		return LoginResult{}, err
	}

	access, rawRefresh, err := s.issueCredentials(ctx, claimed.UserID)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// El duenio del token ya no existe: inconsistencia interna, no
			// un error del cliente.
			return LoginResult{}, fmt.Errorf("refresh token owner %s missing", claimed.UserID)
		}
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  access,
		RefreshToken: rawRefresh,
		ExpiresIn:    s.tokens.AccessTTLSeconds(),
		User:         user.Public(),
	}, nil
}

// GetUser devuelve el usuario por id.
func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateName actualiza el nombre visible del usuario.
func (s *AuthService) UpdateName(ctx context.Context, id, name string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}
	if err := s.users.UpdateName(ctx, id, name, time.Now().UTC()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

// issueCredentials firma un access token y persiste un refresh token nuevo;
// el secreto crudo solo existe en el valor de retorno.
func (s *AuthService) issueCredentials(ctx context.Context, userID string) (access, rawRefresh string, err error) {
	access, err = s.tokens.IssueAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	raw, hash, expiresAt, err := s.tokens.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	token := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.refresh.Create(ctx, token); err != nil {
		return "", "", err
	}
	return access, raw, nil
}

func (s *AuthService) createUserByPhone(ctx context.Context, phone string) (domain.User, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Phone:     phone,
		Name:      "",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	if s.logger != nil {
		s.logger.Info("user created on first otp login", zap.String("user_id", user.ID))
	}
	return user, nil
}
