package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload issued by TokenSigner.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"typ"`
}

// VerifiedClaims is the parsed identity of a valid token.
type VerifiedClaims struct {
	UserID    uuid.UUID
	TokenID   uuid.UUID
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and verifies HS256 tokens with a single process-wide key.
type TokenSigner struct {
	secret  []byte
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewTokenSigner builds a signer for the given secret.
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	s := &TokenSigner{
		secret:  []byte(secret),
		nowFunc: time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s, nil
}

// Sign issues a token of the given kind for subject. tokenID becomes the jti
// claim when it is not uuid.Nil.
func (s *TokenSigner) Sign(kind TokenKind, subject, tokenID uuid.UUID, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
	}
	if tokenID != uuid.Nil {
		claims.ID = tokenID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse verifies signature, expiry and kind. Every failure is ErrInvalidToken.
func (s *TokenSigner) Parse(tokenString string, kind TokenKind) (VerifiedClaims, error) {
	var claims Claims
	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifiedClaims{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return VerifiedClaims{}, ErrInvalidToken
	}

	if claims.Kind != kind {
		return VerifiedClaims{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return VerifiedClaims{}, ErrInvalidToken
	}

	out := VerifiedClaims{
		UserID:    userID,
		Kind:      claims.Kind,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ID != "" {
		tokenID, err := uuid.Parse(claims.ID)
		if err != nil {
			return VerifiedClaims{}, ErrInvalidToken
		}
		out.TokenID = tokenID
	}
	return out, nil
}
