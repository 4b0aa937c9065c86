package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-kasir/internal/common"
)

const defaultAccessTTL = 12 * time.Hour

const roleClaim = "role"

// Operator is the safe subset of an operator account returned to clients.
type Operator struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OperatorSource is the persistence the auth service needs.
type OperatorSource interface {
	GetByUsername(ctx context.Context, username string) (Operator, string, error)
	GetByID(ctx context.Context, id string) (Operator, error)
	Create(ctx context.Context, username, name, role, passwordHash string) (Operator, error)
}

// LoginResult bundles the token material returned after a successful login.
type LoginResult struct {
	Operator     Operator  `json:"operator"`
	AccessToken  string    `json:"access_token"`
	AccessExpiry time.Time `json:"access_expires_at"`
}

// Service coordinates operator authentication. Register shifts are long, so
// access tokens live for the whole shift and there is no refresh flow; an
// expired token simply means logging in again.
type Service struct {
	source    OperatorSource
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	issuer    string
	audience  string
	clockSkew time.Duration
}

// Config configures the auth service.
type Config struct {
	Source         OperatorSource
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("auth: source is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-kasir"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "kasir-register"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}

	return &Service{
		source:    cfg.Source,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies credentials and issues a shift access token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	normalized := strings.TrimSpace(strings.ToLower(username))
	if normalized == "" || password == "" {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", 401, nil)
	}

	operator, hash, err := s.source.GetByUsername(ctx, normalized)
	if err != nil {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", 401, nil)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil || !ok {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", 401, nil)
	}

	token, expiry, err := s.signAccessToken(operator.ID, operator.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{Operator: operator, AccessToken: token, AccessExpiry: expiry}, nil
}

// CreateOperator registers a new operator account. Role defaults to cashier.
func (s *Service) CreateOperator(ctx context.Context, username, name, role, password string) (Operator, error) {
	normalized := strings.TrimSpace(strings.ToLower(username))
	if normalized == "" {
		return Operator{}, common.NewAppError("VALIDATION_ERROR", "username is required", 400, nil)
	}
	if strings.TrimSpace(name) == "" {
		return Operator{}, common.NewAppError("VALIDATION_ERROR", "name is required", 400, nil)
	}
	if len(password) < 8 {
		return Operator{}, common.NewAppError("VALIDATION_ERROR", "password must be at least 8 characters", 400, nil)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = "cashier"
	}
	if role != "cashier" && role != "admin" {
		return Operator{}, common.NewAppError("VALIDATION_ERROR", "role must be cashier or admin", 400, nil)
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return Operator{}, fmt.Errorf("hash password: %w", err)
	}
	return s.source.Create(ctx, normalized, strings.TrimSpace(name), role, hash)
}

// Me fetches the current authenticated operator.
func (s *Service) Me(ctx context.Context, operatorID string) (Operator, error) {
	if strings.TrimSpace(operatorID) == "" {
		return Operator{}, common.NewAppError("UNAUTHORIZED", "unauthorized", 401, nil)
	}
	operator, err := s.source.GetByID(ctx, operatorID)
	if err != nil {
		return Operator{}, common.NewAppError("UNAUTHORIZED", "unauthorized", 401, nil)
	}
	return operator, nil
}

// ParseAccessToken validates an access token and returns the operator
// identifier and role.
func (s *Service) ParseAccessToken(token string) (string, string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", "", common.NewAppError("UNAUTHORIZED", "missing token", 401, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", 401, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", 401, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", 401, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", 401, err)
	}
	role := ""
	if raw, ok := parsed.Get(roleClaim); ok {
		role, _ = raw.(string)
	}
	return parsed.Subject(), role, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

func (s *Service) signAccessToken(operatorID, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(operatorID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(roleClaim, role)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}
