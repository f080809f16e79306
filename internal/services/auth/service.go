package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/deckduel/internal/dependencies/clock"
	"github.com/mcoot/deckduel/internal/dependencies/idgen"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrNotConfigured      = errors.New("session signing secret is not configured")
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 6
)

// Principal is the authenticated caller
type Principal struct {
	UserID   model.UserID
	Username string
	Role     model.Role
}

// IsAdmin reports whether the principal holds the admin role
func (p *Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// Session is a signed session token and the principal it carries
type Session struct {
	Token     string
	Principal Principal
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	Secret          string
	Issuer          string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration. Secret has no default.
func DefaultConfig() Config {
	return Config{
		Issuer:          "deckduel",
		SessionDuration: 24 * time.Hour,
	}
}

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Service handles registration, login and stateless session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	config  Config
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		config:  cfg,
	}
}

// Register creates a player account and signs it in
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.createUser(ctx, username, password, model.RolePlayer)
	if err != nil {
		return nil, err
	}
	return s.createSession(user)
}

// Login checks a username and password and signs the user in
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	cred, err := s.storage.GetCredential(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUser(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.createSession(user)
}

// ValidateSession verifies a session token and returns its principal
func (s *Service) ValidateSession(token string) (*Principal, error) {
	if s.config.Secret == "" {
		return nil, ErrNotConfigured
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || parsed.Subject == "" {
		return nil, ErrInvalidSession
	}

	return &Principal{
		UserID:   model.UserID(parsed.Subject),
		Username: parsed.Username,
		Role:     model.Role(parsed.Role),
	}, nil
}

// BootstrapAdmin creates the admin account if no user has the username yet.
// It reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		if !existing.IsAdmin() {
			return false, fmt.Errorf("bootstrap admin: %s exists and is not an admin", existing.Username)
		}
		return false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return false, err
	}

	if _, err := s.createUser(ctx, username, password, model.RoleAdmin); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)

	var v model.Violations
	n := utf8.RuneCountInString(username)
	v.Check(n >= minUsernameLength && n <= maxUsernameLength,
		fmt.Sprintf("username must be %d to %d characters", minUsernameLength, maxUsernameLength))
	v.Check(!strings.ContainsAny(username, " \t\n"), "username must not contain whitespace")
	v.Check(len(password) >= minPasswordLength,
		fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:        model.UserID(s.ids.NewID()),
		Username:  username,
		Role:      role,
		Inventory: map[model.PowerUpID]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	cred := &model.Credential{
		UserID:       user.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user, cred); err != nil {
		return nil, err
	}
	return user, nil
}

// createSession signs a token for the user
func (s *Service) createSession(user *model.User) (*Session, error) {
	if s.config.Secret == "" {
		return nil, ErrNotConfigured
	}

	now := s.clock.Now()
	expires := now.Add(s.config.SessionDuration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        s.ids.NewID(),
		},
		Username: user.Username,
		Role:     string(user.Role),
	})

	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, err
	}

	return &Session{
		Token: signed,
		Principal: Principal{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		ExpiresAt: expires,
	}, nil
}
