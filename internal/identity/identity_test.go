package identity

import (
	"testing"

	"github.com/LudovicRocher01/Glow/internal/engine"
)

func TestLookupKnownIdentities(t *testing.T) {
	for _, name := range Names() {
		id, ok := Lookup(name)
		if !ok {
			t.Fatalf("expected identity %s to be registered", name)
		}
		if id.Name != name {
			t.Fatalf("expected name %s, got %s", name, id.Name)
		}
		if len(id.Themes) != len(engine.AllThemes) {
			t.Fatalf("%s: expected %d theme labels, got %d", name, len(engine.AllThemes), len(id.Themes))
		}
		if len(id.Modes) != 2 {
			t.Fatalf("%s: expected 2 modes, got %d", name, len(id.Modes))
		}
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	id, ok := Lookup("unknown")
	if ok {
		t.Fatal("expected unknown identity to report a miss")
	}
	if id.Name != DefaultName {
		t.Fatalf("expected fallback %s, got %s", DefaultName, id.Name)
	}
	if id, ok := Lookup("  GLOW "); !ok || id.Title != "Glow" {
		t.Fatalf("expected case-insensitive lookup, got %+v", id)
	}
}

func TestThemeLabelsRoundTripThroughParser(t *testing.T) {
	id, _ := Lookup(DefaultName)
	for _, l := range id.Themes {
		got, ok := engine.ParseTheme(l.Label)
		if !ok || got != l.Theme {
			t.Fatalf("label %q should parse to %s, got %s", l.Label, l.Theme, got)
		}
	}
}

func TestPresets(t *testing.T) {
	id, _ := Lookup(DefaultName)
	for _, n := range []int{15, 30, 50, 80} {
		if !id.HasPreset(n) {
			t.Fatalf("expected preset %d", n)
		}
	}
	if id.HasPreset(42) {
		t.Fatal("unexpected preset 42")
	}
}
