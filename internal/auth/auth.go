// Package auth signs in the site administrator and guards the content panel
// with short-lived bearer tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iwvelando/temple-portal/internal/config"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer   = "temple-portal"
	audience = "admin"
)

var (
	// ErrInvalidCredentials is returned for any failed sign-in. It does not
	// reveal which factor was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDisabled is returned when no administrator is configured.
	ErrDisabled = errors.New("administrator sign-in is not configured")
	// ErrUnauthorized is returned for a missing or invalid session token.
	ErrUnauthorized = errors.New("unauthorized")
)

type ctxKey struct{}

// Session is an issued administrator token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator checks administrator credentials and session tokens.
type Authenticator struct {
	email        string
	passwordHash []byte
	totpSecret   string
	secret       []byte
	ttl          time.Duration
	parser       *jwt.Parser
	logger       *zap.Logger
	now          func() time.Time
}

// New builds an Authenticator from the admin configuration. Without a
// session secret a random one is generated, so tokens do not survive a
// restart.
func New(cfg config.AdminConfig, logger *zap.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		if cfg.PasswordHash != "" {
			logger.Warn("no session secret configured, sessions will not survive a restart",
				zap.String("op", "auth.New"),
			)
		}
	}
	ttlHours := cfg.SessionTTLHours
	if ttlHours <= 0 {
		ttlHours = constants.DefaultSessionTTLHours
	}
	return &Authenticator{
		email:        strings.TrimSpace(cfg.Email),
		passwordHash: []byte(cfg.PasswordHash),
		totpSecret:   cfg.TOTPSecret,
		secret:       secret,
		ttl:          time.Duration(ttlHours) * time.Hour,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Enabled reports whether an administrator is configured.
func (a *Authenticator) Enabled() bool {
	return a.email != "" && len(a.passwordHash) > 0
}

// RequiresTOTP reports whether sign-in needs a one-time code.
func (a *Authenticator) RequiresTOTP() bool {
	return a.totpSecret != ""
}

// Login verifies the credentials and issues a session token.
func (a *Authenticator) Login(email, password, code string) (Session, error) {
	if !a.Enabled() {
		return Session{}, ErrDisabled
	}
	emailOK := strings.EqualFold(strings.TrimSpace(email), a.email)
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	passwordOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !emailOK || !passwordOK {
		return Session{}, ErrInvalidCredentials
	}
	if a.RequiresTOTP() {
		ok, err := totp.ValidateCustom(strings.TrimSpace(code), a.totpSecret, a.now().UTC(), totp.ValidateOpts{
			Period: 30,
			Skew:   1,
			Digits: 6,
		})
		if err != nil || !ok {
			return Session{}, ErrInvalidCredentials
		}
	}
	return a.issue(a.email)
}

func (a *Authenticator) issue(subject string) (Session, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires.UTC()}, nil
}

// Verify checks a session token and returns its subject.
func (a *Authenticator) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !strings.EqualFold(claims.Subject, a.email) {
		return "", fmt.Errorf("%w: unknown subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}
		subject, err := a.Verify(token)
		if err != nil {
			a.logger.Debug("rejected admin request",
				zap.String("op", "auth.Middleware"),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			unauthorized(w, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, subject)))
	})
}

// Subject returns the administrator attached by Middleware.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKey{}).(string)
	return s, ok
}

// HashPassword returns a bcrypt hash suitable for the admin.passwordHash
// setting.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+issuer+`"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
