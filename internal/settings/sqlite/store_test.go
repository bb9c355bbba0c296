package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/settings"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestLoadWithoutSavedPreferencesReturnsDefaults(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := settings.Defaults()
	if got.QuestionCount != want.QuestionCount || got.Mode != want.Mode || len(got.Themes) != len(want.Themes) {
		t.Fatalf("expected defaults %+v, got %+v", want, got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, settings.Settings{Themes: []string{"Culture G", " ", "Je n’ai jamais"}, QuestionCount: 15, Mode: "glou"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, settings.Settings{Themes: []string{"Débats", "Jeux"}, QuestionCount: 80, Mode: "glou"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Themes) != 2 || got.Themes[0] != "Débats" || got.Themes[1] != "Jeux" {
		t.Fatalf("themes = %v, want [Débats Jeux]", got.Themes)
	}
	if got.QuestionCount != 80 {
		t.Fatalf("question_count = %d, want 80", got.QuestionCount)
	}
	if r := settings.Resolve(got); r.Mode != engine.ModeIntense {
		t.Fatalf("expected intense mode, got %s", r.Mode)
	}
}

func TestSavePlayersReplacesRoster(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	first := []engine.Player{{ID: "1", Name: "Alice", Avatar: "🦊"}, {ID: "2", Name: "Bob", Avatar: "🐸"}, {ID: "3", Name: "Chloé", Avatar: "🐙"}}
	if err := store.SavePlayers(ctx, first); err != nil {
		t.Fatalf("save players: %v", err)
	}
	second := []engine.Player{{ID: "3", Name: "Chloé", Avatar: "🐙"}, {ID: "1", Name: " Alice ", Avatar: "🦊"}}
	if err := store.SavePlayers(ctx, second); err != nil {
		t.Fatalf("replace players: %v", err)
	}
	got, err := store.Players(ctx)
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 players, got %d", len(got))
	}
	if got[0].ID != "3" || got[1].Name != "Alice" {
		t.Fatalf("unexpected roster order %+v", got)
	}
}

func TestSavePlayersRejectsMissingID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.SavePlayers(ctx, []engine.Player{{ID: "1", Name: "Alice"}}); err != nil {
		t.Fatalf("save players: %v", err)
	}
	if err := store.SavePlayers(ctx, []engine.Player{{Name: "Nobody"}}); err == nil {
		t.Fatal("expected missing id error")
	}
	got, _ := store.Players(ctx)
	if len(got) != 1 {
		t.Fatalf("expected rollback to keep previous roster, got %+v", got)
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Load(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if err := store.SavePlayers(ctx, nil); err == nil {
		t.Fatal("expected context error")
	}
}
