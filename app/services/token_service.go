// Package services provides the transport and technical concerns of the pricing console: the
// backend API client, its metrics and session tokens
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Token service error constants
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrSecretRequired = errors.New("secret key is required to issue tokens")
)

// SessionTokenService issues and reads the bearer tokens that carry a session's role.
type SessionTokenService interface {
	Issue(session models.Session) (string, error)
	Validate(token string) (*SessionClaims, error)
	// ParseUnverified reads the claims without checking the signature. The console uses it
	// when no secret is configured and leaves verification to the backend.
	ParseUnverified(token string) (*SessionClaims, error)
}

// SessionClaims represents the claims in a session token
type SessionClaims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	TokenID   string      `json:"jti"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Session converts the claims into the session injected into the flows.
func (c *SessionClaims) Session(token string) models.Session {
	expiresAt := c.ExpiresAt
	return models.Session{
		UserID:    c.UserID,
		Role:      c.Role,
		Token:     token,
		ExpiresAt: &expiresAt,
	}
}

// SessionTokenServiceImpl implements SessionTokenService with HS256
type SessionTokenServiceImpl struct {
	ttl       time.Duration
	secretKey []byte
	issuer    string
}

// NewSessionTokenService creates a token service. An empty secret yields a read-only service
// that can only parse tokens unverified.
func NewSessionTokenService(ttl time.Duration, issuer, secretKey string) *SessionTokenServiceImpl {
	return &SessionTokenServiceImpl{
		ttl:       ttl,
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Issue signs a token for session
func (s *SessionTokenServiceImpl) Issue(session models.Session) (string, error) {
	if len(s.secretKey) == 0 {
		return "", ErrSecretRequired
	}

	tokenID, err := generateTokenID()
	if err != nil {
		return "", err
	}

	now := utils.UTCNow()
	claims := jwt.MapClaims{
		"user_id":    session.UserID,
		"role":       string(session.Role),
		"token_type": "access",
		"jti":        tokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.ttl).Unix(),
		"iss":        s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate verifies the signature and expiry of token and returns its claims
func (s *SessionTokenServiceImpl) Validate(token string) (*SessionClaims, error) {
	if len(s.secretKey) == 0 {
		return nil, ErrSecretRequired
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claimsFromMap(claims)
}

func (s *SessionTokenServiceImpl) ParseUnverified(token string) (*SessionClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	parsed, err := claimsFromMap(claims)
	if err != nil {
		return nil, err
	}
	if !parsed.ExpiresAt.IsZero() && utils.IsExpired(parsed.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return parsed, nil
}

func claimsFromMap(claims jwt.MapClaims) (*SessionClaims, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}

	parsed := &SessionClaims{Role: models.ParseRole(role)}
	parsed.UserID, _ = claims["user_id"].(string)
	parsed.TokenID, _ = claims["jti"].(string)
	if iat, ok := claims["iat"].(float64); ok {
		parsed.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claims["exp"].(float64); ok {
		parsed.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return parsed, nil
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
