package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	minSecretLength  = 32
	refreshSecretLen = 32
)

var (
	// ErrTokenInvalid cubre firma invalida, tipo equivocado, sub vacio y
	// expiracion; el llamador no distingue la causa.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrSecretTooShort es un error de configuracion: el proceso no debe
	// arrancar con una clave debil.
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 characters")
)

// TokenService firma y valida access tokens y genera secretos de refresh.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type accessClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken emite un JWT de corta vida para el usuario.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccessToken valida firma, tipo y expiracion, y devuelve el user id.
func (s *TokenService) ParseAccessToken(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrTokenInvalid
	}
	var claims accessClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrTokenInvalid
	}
	if claims.TokenType != tokenTypeAccess {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// NewRefreshToken genera un secreto aleatorio; devuelve el secreto crudo en
// hex, su hash SHA-256 y la fecha de expiracion. Solo el hash se persiste.
func (s *TokenService) NewRefreshToken() (raw, hash string, expiresAt time.Time, err error) {
	buf := make([]byte, refreshSecretLen)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}
	raw = hex.EncodeToString(buf)
	hash = HashRefreshToken(raw)
	expiresAt = time.Now().UTC().Add(s.refreshTTL)
	return raw, hash, expiresAt, nil
}

// HashRefreshToken calcula el hash SHA-256 en hex para almacenar y buscar.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// AccessTTLSeconds es el valor de expires_in en las respuestas.
func (s *TokenService) AccessTTLSeconds() int64 {
	return int64(s.accessTTL.Seconds())
}
