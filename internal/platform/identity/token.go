package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTTL is how long a minted bearer token stays valid
	TokenTTL = 15 * time.Minute
	// Issuer is the iss claim of every minted token
	Issuer = "finpanel"
)

// Claims represents the JWT claims sent to the finance API
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 bearer tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer with the shared API secret
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// GenerateToken mints a new token for a user
func (s *TokenIssuer) GenerateToken(userID uuid.UUID, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns its claims
func (s *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// SessionPrincipal is a signed-in user whose tokens are minted by a TokenIssuer
type SessionPrincipal struct {
	UserID uuid.UUID
	Email  string
	issuer *TokenIssuer
}

// NewSessionPrincipal binds a user to the issuer that mints its tokens
func NewSessionPrincipal(issuer *TokenIssuer, userID uuid.UUID, email string) *SessionPrincipal {
	return &SessionPrincipal{UserID: userID, Email: email, issuer: issuer}
}

// Subject implements Principal
func (p *SessionPrincipal) Subject() string {
	return p.UserID.String()
}

// Token implements Principal. Every call mints a new token.
func (p *SessionPrincipal) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.issuer.GenerateToken(p.UserID, p.Email)
}
