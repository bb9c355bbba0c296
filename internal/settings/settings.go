// Package settings persists the preferences a host picks between games:
// selected themes, game length, mode and the saved roster.
package settings

import (
	"context"
	"sync"

	"github.com/LudovicRocher01/Glow/internal/engine"
)

const DefaultQuestionCount = 30

// Settings is the stored form. Themes and Mode hold raw labels and tokens,
// which may come from older clients, so they are only interpreted by Resolve.
type Settings struct {
	Themes        []string `json:"themes"`
	QuestionCount int      `json:"questionCount"`
	Mode          string   `json:"mode"`
}

// Resolved is the engine-facing view of Settings.
type Resolved struct {
	Themes []engine.Theme  `json:"themes"`
	Rounds int             `json:"rounds"`
	Mode   engine.GameMode `json:"mode"`
}

type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
	Players(ctx context.Context) ([]engine.Player, error)
	SavePlayers(ctx context.Context, players []engine.Player) error
}

// Defaults selects every theme for a Classic game of the default length.
func Defaults() Settings {
	themes := make([]string, 0, len(engine.AllThemes))
	for _, t := range engine.AllThemes {
		themes = append(themes, string(t))
	}
	return Settings{Themes: themes, QuestionCount: DefaultQuestionCount, Mode: string(engine.ModeClassic)}
}

// Resolve drops unknown and duplicate theme labels, replaces a non-positive
// question count with the default and maps unknown modes to Classic.
// An empty theme list is kept empty so that starting a game reports it.
func Resolve(s Settings) Resolved {
	out := Resolved{Rounds: s.QuestionCount, Mode: engine.ParseMode(s.Mode)}
	if out.Rounds <= 0 {
		out.Rounds = DefaultQuestionCount
	}
	seen := make(map[engine.Theme]bool)
	for _, label := range s.Themes {
		t, ok := engine.ParseTheme(label)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out.Themes = append(out.Themes, t)
	}
	return out
}

// Memory is a process-local Store.
type Memory struct {
	mu       sync.RWMutex
	settings Settings
	players  []engine.Player
}

func NewMemory() *Memory {
	return &Memory{settings: Defaults()}
}

func (m *Memory) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.settings
	out.Themes = append([]string(nil), m.settings.Themes...)
	return out, nil
}

func (m *Memory) Save(ctx context.Context, s Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Themes = append([]string(nil), s.Themes...)
	m.settings = s
	return nil
}

func (m *Memory) Players(ctx context.Context) ([]engine.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Player(nil), m.players...), nil
}

func (m *Memory) SavePlayers(ctx context.Context, players []engine.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = append([]engine.Player(nil), players...)
	return nil
}
