// Package session is the in-process contract presentation layers call:
// login, draws, matches, collection, leaderboard, history and admin purge.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-arena/internal/account"
	"github.com/xtding233/gacha-arena/internal/config"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// snapshot pairs balance params with the engine built from them. It is
// swapped whole on config reload.
type snapshot struct {
	params config.Params
	engine *gacha.Engine
}

// Service owns sessions and the per-username player state they share.
type Service struct {
	store    storage.Store
	accounts *account.Service
	rng      gacha.RandomSource
	logger   *log.Logger
	now      func() time.Time

	snap atomic.Pointer[snapshot]

	mu        sync.Mutex
	players   map[string]*progression.Player
	sessions  map[string]*Session
	saveLocks map[string]*sync.Mutex // per username; serializes stats snapshots and writes
}

// Option customizes a Service.
type Option func(*Service)

// WithRNG injects the random source used for every draw.
func WithRNG(rng gacha.RandomSource) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger routes session logs to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service. accounts may share store.
func New(store storage.Store, accounts *account.Service, params config.Params, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if accounts == nil {
		return nil, errors.New("session: account service is required")
	}
	s := &Service{
		store:     store,
		accounts:  accounts,
		logger:    log.Default(),
		now:       time.Now,
		players:   make(map[string]*progression.Player),
		sessions:  make(map[string]*Session),
		saveLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = gacha.DefaultRNG()
	}
	if err := s.ApplyParams(params); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyParams swaps in new balance. Cards already drawn and matches already
// started keep the values they were created with.
func (s *Service) ApplyParams(p config.Params) error {
	engine, err := gacha.NewEngine(p.Catalog, p.Table, s.rng, gacha.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("build draw engine: %w", err)
	}
	if gaps := p.Catalog.Gaps(); len(gaps) > 0 {
		s.logger.Printf("[session] catalog has no template for %v; those draws fall back to the rarity pool", gaps)
	}
	s.snap.Store(&snapshot{params: p, engine: engine})

	s.mu.Lock()
	for _, pl := range s.players {
		pl.SetRules(p.Progression)
	}
	s.mu.Unlock()
	return nil
}

// Params returns the balance currently in effect.
func (s *Service) Params() config.Params { return s.snap.Load().params }

func (s *Service) current() *snapshot { return s.snap.Load() }

// Register creates an account. Player stats are created on first login.
func (s *Service) Register(ctx context.Context, username, password string) error {
	_, err := s.accounts.Register(ctx, username, password)
	return err
}

// Login authenticates and opens a session. Every session of one username
// shares the same in-memory player.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	acct, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	player, err := s.player(ctx, acct.Username)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		svc:     s,
		token:   uuid.NewString(),
		account: acct,
		player:  player,
	}
	s.mu.Lock()
	s.sessions[sess.token] = sess
	s.mu.Unlock()
	s.logger.Printf("[session] %s logged in", acct.Username)
	return sess, nil
}

// player returns the cached player or loads it, creating default stats on
// first login.
func (s *Service) player(ctx context.Context, username string) (*progression.Player, error) {
	s.mu.Lock()
	if p, ok := s.players[username]; ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	rules := s.current().params.Progression
	defaults := toStorage(progression.NewPlayer(username, rules).Stats())
	stats, created, err := storage.LoadOrCreatePlayer(ctx, s.store, username, defaults)
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", username, err)
	}
	owned, err := s.store.LoadCollection(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", username, err)
	}
	if created {
		s.logger.Printf("[session] created player %s", username)
	}
	p := progression.Restore(fromStorage(stats), owned, rules)

	s.mu.Lock()
	defer s.mu.Unlock()
	// another login may have won the race
	if existing, ok := s.players[username]; ok {
		return existing, nil
	}
	s.players[username] = p
	return p, nil
}

// Session looks up an open session by token.
func (s *Service) Session(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// Logout saves the player's stats and closes the session. The session is
// closed even when the save fails.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}
	err := s.saveStats(ctx, sess.player)
	s.logger.Printf("[session] %s logged out", sess.Username())
	return err
}

// persist runs one storage call, wrapping and logging a failure.
func (s *Service) persist(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		s.logger.Printf("[session] persistence failure (%s): %v", op, err)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (s *Service) saveLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.saveLocks[username]
	if !ok {
		mu = new(sync.Mutex)
		s.saveLocks[username] = mu
	}
	return mu
}

// saveStats writes p's current stats. The snapshot is taken under the
// player's save lock, so the last completed write always holds the newest
// state.
func (s *Service) saveStats(ctx context.Context, p *progression.Player) error {
	mu := s.saveLock(p.Username())
	mu.Lock()
	defer mu.Unlock()
	row := s.statsRow(p)
	return s.persist(ctx, "save stats", func(ctx context.Context) error {
		return s.store.SavePlayer(ctx, row)
	})
}

func (s *Service) statsRow(p *progression.Player) storage.PlayerStats {
	row := toStorage(p.Stats())
	row.UpdatedAt = s.now().UTC()
	return row
}

func toStorage(st progression.Stats) storage.PlayerStats {
	return storage.PlayerStats{
		Username: st.Username,
		Level:    st.Level,
		XP:       st.XP,
		Currency: st.Currency,
		Rating:   st.Rating,
	}
}

func fromStorage(st storage.PlayerStats) progression.Stats {
	return progression.Stats{
		Username: st.Username,
		Level:    st.Level,
		XP:       st.XP,
		Currency: st.Currency,
		Rating:   st.Rating,
	}
}
