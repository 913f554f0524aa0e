// Package sqlite provides the SQLite-backed persistence gateway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// Store persists arena state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// withTransaction commits when fn returns nil and rolls back otherwise.
func (s *Store) withTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit transaction: %w", err)
		}
	}()
	return fn(tx)
}

// LoadPlayer returns one player's stats.
func (s *Store) LoadPlayer(ctx context.Context, username string) (storage.PlayerStats, error) {
	if err := s.ready(ctx); err != nil {
		return storage.PlayerStats{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT username, level, xp, currency, rating, updated_at FROM players WHERE username = ?`,
		username,
	)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.PlayerStats{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PlayerStats{}, fmt.Errorf("load player %s: %w", username, err)
	}
	return p, nil
}

// SavePlayer upserts a player's stats by username.
func (s *Store) SavePlayer(ctx context.Context, p storage.PlayerStats) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (username, level, xp, currency, rating, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		   level = excluded.level,
		   xp = excluded.xp,
		   currency = excluded.currency,
		   rating = excluded.rating,
		   updated_at = excluded.updated_at`,
		username, p.Level, p.XP, p.Currency, p.Rating, toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", username, err)
	}
	return nil
}

// ListPlayers returns the leaderboard.
func (s *Store) ListPlayers(ctx context.Context, order storage.Order, limit int) ([]storage.PlayerStats, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	column := "rating"
	switch order {
	case storage.ByLevel:
		column = "level"
	case storage.ByCurrency:
		column = "currency"
	}
	query := `SELECT username, level, xp, currency, rating, updated_at FROM players ORDER BY ` +
		column + ` DESC, username ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []storage.PlayerStats
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return out, nil
}

// AppendCards adds cards to a collection in one transaction.
func (s *Store) AppendCards(ctx context.Context, username string, cards []card.Card, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO owned_cards (username, card_name, attribute, rarity, category, description, base_power, acquired_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare card insert: %w", err)
		}
		defer stmt.Close()
		for _, c := range cards {
			if _, err := stmt.ExecContext(ctx,
				username, c.Name, string(c.Attribute), string(c.Rarity), string(c.Category),
				c.Description, c.BasePower, toMillis(at),
			); err != nil {
				return fmt.Errorf("append card %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// LoadCollection returns a player's cards in acquisition order.
func (s *Store) LoadCollection(ctx context.Context, username string) ([]card.Card, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT card_name, attribute, rarity, category, description, base_power
		 FROM owned_cards WHERE username = ? ORDER BY id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", username, err)
	}
	defer rows.Close()

	out := []card.Card{}
	for rows.Next() {
		var c card.Card
		var attr, rarity, category string
		if err := rows.Scan(&c.Name, &attr, &rarity, &category, &c.Description, &c.BasePower); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Attribute = card.Attribute(attr)
		c.Rarity = card.Rarity(rarity)
		c.Category = card.Category(category)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}

// ClearCollections deletes every owned card.
func (s *Store) ClearCollections(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM owned_cards`)
	if err != nil {
		return 0, fmt.Errorf("clear owned cards: %w", err)
	}
	return res.RowsAffected()
}

// AppendMatch inserts one match record.
func (s *Store) AppendMatch(ctx context.Context, rec storage.MatchRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	playedAt := rec.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO match_records (id, username, opponent, wins, losses, draws, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Username, rec.Opponent, rec.Wins, rec.Losses, rec.Draws, toMillis(playedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append match %s: %w", rec.ID, err)
	}
	return nil
}

// ListMatches returns a player's match history, newest first.
func (s *Store) ListMatches(ctx context.Context, username string, limit int) ([]storage.MatchRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT id, username, opponent, wins, losses, draws, played_at
		 FROM match_records WHERE username = ? ORDER BY played_at DESC, rowid DESC`
	args := []any{username}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches %s: %w", username, err)
	}
	defer rows.Close()

	out := []storage.MatchRecord{}
	for rows.Next() {
		var rec storage.MatchRecord
		var playedAt int64
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Opponent, &rec.Wins, &rec.Losses, &rec.Draws, &playedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		rec.PlayedAt = fromMillis(playedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

// ClearMatches deletes every match record.
func (s *Store) ClearMatches(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM match_records`)
	if err != nil {
		return 0, fmt.Errorf("clear match records: %w", err)
	}
	return res.RowsAffected()
}

// CreateAccount inserts credentials.
func (s *Store) CreateAccount(ctx context.Context, acct storage.Account) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	username := strings.TrimSpace(acct.Username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	createdAt := acct.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	admin := 0
	if acct.Admin {
		admin = 1
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`,
		username, acct.PasswordHash, admin, toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create account %s: %w", username, err)
	}
	return nil
}

// GetAccount returns credentials by username.
func (s *Store) GetAccount(ctx context.Context, username string) (storage.Account, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Account{}, err
	}
	var acct storage.Account
	var admin int
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT username, password_hash, is_admin, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&acct.Username, &acct.PasswordHash, &admin, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Account{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Account{}, fmt.Errorf("get account %s: %w", username, err)
	}
	acct.Admin = admin != 0
	acct.CreatedAt = fromMillis(createdAt)
	return acct, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (storage.PlayerStats, error) {
	var p storage.PlayerStats
	var updatedAt int64
	if err := row.Scan(&p.Username, &p.Level, &p.XP, &p.Currency, &p.Rating, &updatedAt); err != nil {
		return storage.PlayerStats{}, err
	}
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
