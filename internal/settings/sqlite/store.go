// Package sqlite provides a SQLite-backed settings store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/settings"
	"github.com/LudovicRocher01/Glow/internal/settings/sqlite/migrations"
	"github.com/LudovicRocher01/Glow/internal/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists host preferences and the saved roster in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ settings.Store = (*Store)(nil)

// Open opens a SQLite settings store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
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

// Load returns the saved preferences, or settings.Defaults when nothing was saved.
func (s *Store) Load(ctx context.Context) (settings.Settings, error) {
	if err := ctx.Err(); err != nil {
		return settings.Settings{}, err
	}
	if s == nil || s.sqlDB == nil {
		return settings.Settings{}, fmt.Errorf("storage is not configured")
	}
	var (
		themes string
		out    settings.Settings
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT themes, question_count, mode FROM preferences WHERE id = 1`,
	).Scan(&themes, &out.QuestionCount, &out.Mode)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(themes), &out.Themes); err != nil {
		return settings.Settings{}, fmt.Errorf("decode themes: %w", err)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, in settings.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	themes := make([]string, 0, len(in.Themes))
	for _, t := range in.Themes {
		if t = strings.TrimSpace(t); t != "" {
			themes = append(themes, t)
		}
	}
	encoded, err := json.Marshal(themes)
	if err != nil {
		return fmt.Errorf("encode themes: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO preferences (id, themes, question_count, mode, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   themes = excluded.themes,
		   question_count = excluded.question_count,
		   mode = excluded.mode,
		   updated_at = excluded.updated_at`,
		string(encoded),
		in.QuestionCount,
		strings.TrimSpace(in.Mode),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Players returns the saved roster in the order it was saved.
func (s *Store) Players(ctx context.Context) ([]engine.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT player_id, name, avatar FROM saved_players ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []engine.Player
	for rows.Next() {
		var p engine.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Avatar); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return out, nil
}

// SavePlayers replaces the saved roster.
func (s *Store) SavePlayers(ctx context.Context, players []engine.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_players`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear roster: %w", err)
	}
	for i, p := range players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			_ = tx.Rollback()
			return fmt.Errorf("player id is required")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO saved_players (position, player_id, name, avatar) VALUES (?, ?, ?, ?)`,
			i, id, strings.TrimSpace(p.Name), p.Avatar,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save player %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster: %w", err)
	}
	return nil
}
