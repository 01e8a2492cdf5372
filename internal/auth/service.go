package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/config"
	"github.com/inkwell/blogapi/internal/metrics"
	"github.com/inkwell/blogapi/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxPasswordLength = 72 // bcrypt limit
	minPasswordLength = 8
	minNameLength     = 2
	bearerPrefix      = "Bearer "
)

// userStore abstracts the persistence layer.
type userStore interface {
	CreateUser(ctx context.Context, input NewUser) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	RotateRefreshToken(ctx context.Context, token RefreshToken) error
	FindRefreshToken(ctx context.Context, id uuid.UUID) (RefreshToken, error)
	RevokeSession(ctx context.Context, userID uuid.UUID) error
	PurgeExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginLimiter throttles repeated failed logins for one email.
type LoginLimiter interface {
	Check(ctx context.Context, identifier string) error
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// Option customizes a Service.
type Option func(*Service)

// WithLoginLimiter enables failed-login throttling.
func WithLoginLimiter(limiter LoginLimiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// Service encapsulates authentication use cases.
type Service struct {
	store   userStore
	signer  *TokenSigner
	cfg     config.AuthConfig
	limiter LoginLimiter
	nowFunc func() time.Time
	logger  *zap.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates a Service with dependencies.
func NewService(store userStore, signer *TokenSigner, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		store:   store,
		signer:  signer,
		cfg:     cfg,
		nowFunc: time.Now,
		logger:  zap.L().Named("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries data for user registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult contains user and token information.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// Register creates a new user, hashing the password and issuing tokens.
func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	if err := validateRegistration(input); err != nil {
		return AuthResult{}, err
	}

	hashedPassword, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, NewUser{
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return AuthResult{}, ErrEmailAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordAuthEvent("register", "success")
	return s.issueTokens(ctx, user)
}

// Authenticate verifies credentials, mints an access token and rotates the
// user's refresh token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)

	if err := s.checkLimiter(ctx, email); err != nil {
		return AuthResult{}, err
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, fmt.Errorf("find user: %w", err)
		}
		// keep timing flat for unknown emails
		_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
		s.loginFailed(ctx, email)
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.loginFailed(ctx, email)
		return AuthResult{}, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("reset login limiter", zap.Error(err))
		}
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.RecordAuthEvent("login", "success")
	return result, nil
}

// GenerateAccessToken signs a short-lived access token for userID.
func (s *Service) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := s.nowFunc()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	token, err := s.signer.Sign(KindAccess, userID, uuid.Nil, now, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// RotateRefreshToken creates a new refresh token record for userID,
// superseding any previous one, and returns its signed bearer form.
func (s *Service) RotateRefreshToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	now := s.nowFunc()
	record := RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}

	token, err := s.signer.Sign(KindRefresh, userID, record.ID, now, record.ExpiresAt)
	if err != nil {
		return "", time.Time{}, err
	}

	if err := s.store.RotateRefreshToken(ctx, record); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", time.Time{}, ErrUserNotFound
		}
		return "", time.Time{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	metrics.RecordAuthEvent("rotate", "success")
	return token, record.ExpiresAt, nil
}

// ResolveUserFromBearerToken returns the user behind an "Authorization"
// header value. An empty header yields (nil, nil).
func (s *Service) ResolveUserFromBearerToken(ctx context.Context, header string) (*User, error) {
	if header == "" {
		return nil, nil
	}

	raw, err := parseBearer(header)
	if err != nil {
		metrics.RecordAuthEvent("resolve", "rejected")
		return nil, err
	}

	claims, err := s.signer.Parse(raw, KindAccess)
	if err != nil {
		metrics.RecordAuthEvent("resolve", "rejected")
		return nil, err
	}

	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.RecordAuthEvent("resolve", "rejected")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}

	safe := user.SafeUser()
	return &safe, nil
}

// RefreshAccessToken mints a new access token from a bearer refresh token.
// The token must still be the one its owner currently references.
func (s *Service) RefreshAccessToken(ctx context.Context, header string) (string, time.Time, error) {
	token, expiresAt, err := s.refreshAccessToken(ctx, header)
	switch {
	case err == nil:
		metrics.RecordAuthEvent("refresh", "success")
	case errors.Is(err, ErrInvalidToken):
		metrics.RecordAuthEvent("refresh", "rejected")
	}
	return token, expiresAt, err
}

func (s *Service) refreshAccessToken(ctx context.Context, header string) (string, time.Time, error) {
	raw, err := parseBearer(header)
	if err != nil {
		return "", time.Time{}, err
	}

	claims, err := s.signer.Parse(raw, KindRefresh)
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.TokenID == uuid.Nil {
		return "", time.Time{}, ErrInvalidToken
	}

	record, err := s.store.FindRefreshToken(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return "", time.Time{}, ErrInvalidToken
		}
		return "", time.Time{}, fmt.Errorf("find refresh token: %w", err)
	}
	if record.UserID != claims.UserID || !s.nowFunc().Before(record.ExpiresAt) {
		return "", time.Time{}, ErrInvalidToken
	}

	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", time.Time{}, ErrInvalidToken
		}
		return "", time.Time{}, fmt.Errorf("load token subject: %w", err)
	}
	if user.RefreshTokenID == nil || *user.RefreshTokenID != record.ID {
		return "", time.Time{}, ErrInvalidToken
	}

	return s.GenerateAccessToken(user.ID)
}

// RevokeSession deletes the user's refresh token and clears the reference.
// Calling it without a live session is a no-op.
func (s *Service) RevokeSession(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RevokeSession(ctx, userID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	metrics.RecordAuthEvent("revoke", "success")
	return nil
}

// UserByID loads a user without sensitive fields.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return user.SafeUser(), nil
}

// UserExists reports whether a user with id is stored.
func (s *Service) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.UserByID(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeExpiredSessions removes refresh token records past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.PurgeExpiredRefreshTokens(ctx, s.nowFunc())
}

func (s *Service) issueTokens(ctx context.Context, user User) (AuthResult, error) {
	accessToken, accessExpiry, err := s.GenerateAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, refreshExpiry, err := s.RotateRefreshToken(ctx, user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return AuthResult{
		User: user.SafeUser(),
		Tokens: TokenPair{
			AccessToken:        accessToken,
			AccessTokenExpiry:  accessExpiry,
			RefreshToken:       refreshToken,
			RefreshTokenExpiry: refreshExpiry,
		},
	}, nil
}

func (s *Service) checkLimiter(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Check(ctx, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratelimit.ErrRateLimited):
		metrics.RecordAuthEvent("login", "throttled")
		return ErrTooManyAttempts
	default:
		// Redis outages must not lock everyone out.
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
}

func (s *Service) loginFailed(ctx context.Context, email string) {
	metrics.RecordAuthEvent("login", "failure")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil && !errors.Is(err, ratelimit.ErrRateLimited) {
		s.logger.Warn("record failed login", zap.Error(err))
	}
}

func (s *Service) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("blog-api-placeholder-password"), s.cfg.BcryptCost)
		if err != nil {
			s.logger.Error("generate placeholder hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func parseBearer(header string) (string, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidToken
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length of %d characters", maxPasswordLength)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func validateRegistration(input RegisterInput) error {
	if len(strings.TrimSpace(input.Email)) == 0 || len(strings.TrimSpace(input.Password)) == 0 {
		return ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
		return ErrInvalidCredentials
	}
	if len(strings.TrimSpace(input.FirstName)) < minNameLength || len(strings.TrimSpace(input.LastName)) < minNameLength {
		return ErrInvalidCredentials
	}
	return nil
}
