// Package account stores login credentials apart from player stats.
package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/xtding233/gacha-arena/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrWeakPassword       = errors.New("password too short")
)

const (
	MaxUsernameLen = 32
	MinPasswordLen = 4
)

// Service registers and authenticates accounts.
type Service struct {
	store  storage.AccountStore
	cost   int
	now    func() time.Time
	logger *log.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger routes account logs to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New returns a Service over store.
func New(store storage.AccountStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeUsername trims and validates a username.
func NormalizeUsername(username string) (string, error) {
	u := strings.TrimSpace(username)
	if u == "" || utf8.RuneCountInString(u) > MaxUsernameLen {
		return "", fmt.Errorf("%w: must be 1-%d characters", ErrInvalidUsername, MaxUsernameLen)
	}
	if strings.ContainsAny(u, " \t\r\n") {
		return "", fmt.Errorf("%w: must not contain whitespace", ErrInvalidUsername)
	}
	return u, nil
}

// Register creates a non-admin account.
func (s *Service) Register(ctx context.Context, username, password string) (storage.Account, error) {
	return s.create(ctx, username, password, false)
}

func (s *Service) create(ctx context.Context, username, password string, admin bool) (storage.Account, error) {
	u, err := NormalizeUsername(username)
	if err != nil {
		return storage.Account{}, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return storage.Account{}, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, MinPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acct := storage.Account{Username: u, PasswordHash: hash, Admin: admin, CreatedAt: s.now().UTC()}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return storage.Account{}, err
	}
	s.logger.Printf("[account] registered %s (admin=%t)", u, admin)
	return acct, nil
}

// Authenticate checks a password. Unknown users and wrong passwords both
// return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	u := strings.TrimSpace(username)
	acct, err := s.store.GetAccount(ctx, u)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return storage.Account{}, fmt.Errorf("load account: %w", err)
	}
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return storage.Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// EnsureAdmin creates the admin account if it is missing. An existing
// account under that name is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	u, err := NormalizeUsername(username)
	if err != nil {
		return err
	}
	if _, err := s.store.GetAccount(ctx, u); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}
	if _, err := s.create(ctx, u, password, true); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
