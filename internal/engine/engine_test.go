package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/LudovicRocher01/Glow/internal/prompts"
)

func testPlayers(n int) []Player {
	out := make([]Player, n)
	for i := range out {
		out[i] = Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Joueur %d", i), Avatar: fmt.Sprintf("avatar%d", i)}
	}
	return out
}

func defaultEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	lib, err := prompts.Default()
	if err != nil {
		t.Fatalf("should load embedded catalog: %v", err)
	}
	return New(lib, rand.New(rand.NewSource(seed)))
}

func catalogEngine(t *testing.T, entries map[prompts.Category][]string) *Engine {
	t.Helper()
	lib, err := prompts.New(entries, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("should build catalog: %v", err)
	}
	return New(lib, rand.New(rand.NewSource(7)))
}

func mustConfig(t *testing.T, players []Player, themes []Theme, rounds int, mode GameMode) GameConfiguration {
	t.Helper()
	cfg, err := NewConfiguration(players, themes, rounds, mode)
	if err != nil {
		t.Fatalf("should build configuration: %v", err)
	}
	return cfg
}

func TestEligibleTypesNonEmptyForEveryThemeSelection(t *testing.T) {
	for mask := 1; mask < 1<<len(AllThemes); mask++ {
		var themes []Theme
		for i, th := range AllThemes {
			if mask&(1<<i) != 0 {
				themes = append(themes, th)
			}
		}
		for _, mode := range []GameMode{ModeClassic, ModeIntense} {
			got, err := EligibleTypes(themes, mode)
			if err != nil {
				t.Fatalf("themes %v mode %s: unexpected error %v", themes, mode, err)
			}
			if len(got) == 0 {
				t.Fatalf("themes %v mode %s: expected non-empty pool", themes, mode)
			}
			if mode == ModeClassic {
				for _, c := range got {
					if IntenseOnly(c) {
						t.Fatalf("themes %v: classic pool contains intense-only code %d", themes, c)
					}
				}
			}
		}
	}
}

func TestEligibleTypesNoThemeSentinel(t *testing.T) {
	for _, mode := range []GameMode{ModeClassic, ModeIntense} {
		got, err := EligibleTypes(nil, mode)
		if !errors.Is(err, ErrNoThemeSelected) {
			t.Fatalf("expected ErrNoThemeSelected, got %v", err)
		}
		if got != nil {
			t.Fatalf("expected no pool with the sentinel, got %v", got)
		}
	}
}

func TestEligibleTypesUnion(t *testing.T) {
	got, err := EligibleTypes([]Theme{ThemeDebates, ThemeCulture, ThemeDebates}, ModeClassic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ChallengeType{19, 20, 23, 24, 25}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEligibleTypesClassicFiltersOther(t *testing.T) {
	classic, _ := EligibleTypes([]Theme{ThemeOther}, ModeClassic)
	if fmt.Sprint(classic) != fmt.Sprint([]ChallengeType{29}) {
		t.Fatalf("expected only confidence code in classic, got %v", classic)
	}
	intense, _ := EligibleTypes([]Theme{ThemeOther}, ModeIntense)
	if fmt.Sprint(intense) != fmt.Sprint([]ChallengeType{12, 13, 14, 15, 18, 29}) {
		t.Fatalf("expected every Other code in intense, got %v", intense)
	}
}

func TestEligibleTypesFallsBackToDefaultPool(t *testing.T) {
	got, err := EligibleTypes([]Theme{"retired_theme"}, ModeClassic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(got) != fmt.Sprint(DefaultPool()) {
		t.Fatalf("expected default pool, got %v", got)
	}
}

func TestEveryCodeMapsToOneTheme(t *testing.T) {
	owners := map[ChallengeType]Theme{}
	for theme, list := range themeCodes {
		for _, c := range list {
			if prev, ok := owners[c]; ok {
				t.Fatalf("code %d mapped to both %s and %s", c, prev, theme)
			}
			owners[c] = theme
			if got := kinds[codes[c]].theme; got != theme {
				t.Fatalf("code %d: kind theme is %s, table says %s", c, got, theme)
			}
		}
	}
	if len(owners) != len(codes) {
		t.Fatalf("expected %d mapped codes, got %d", len(codes), len(owners))
	}
}

func TestNextChallengeNeverRepeatsFeaturedPlayer(t *testing.T) {
	e := defaultEngine(t, 42)
	for _, n := range []int{2, 3, 6} {
		cfg := mustConfig(t, testPlayers(n), AllThemes, 1000, ModeIntense)
		st := RoundState{CurrentRound: 1}
		prev := ""
		for i := 0; i < 1000; i++ {
			p, next, err := e.NextChallenge(cfg, st)
			if err != nil {
				t.Fatalf("round %d: unexpected error %v", i, err)
			}
			if p.FeaturedPlayer == nil {
				t.Fatalf("round %d: expected a featured player", i)
			}
			if p.FeaturedPlayer.ID == prev {
				t.Fatalf("round %d with %d players: %s featured twice in a row", i, n, prev)
			}
			prev = p.FeaturedPlayer.ID
			st = next
		}
	}
}

func TestNextChallengeSinglePlayerNeverFails(t *testing.T) {
	e := defaultEngine(t, 3)
	cfg := mustConfig(t, testPlayers(1), AllThemes, 1000, ModeIntense)
	st := RoundState{CurrentRound: 1}
	for i := 0; i < 1000; i++ {
		p, next, err := e.NextChallenge(cfg, st)
		if err != nil {
			t.Fatalf("round %d: unexpected error %v", i, err)
		}
		if p.Kind == KindVersus || p.Kind == KindConfidence {
			t.Fatalf("round %d: paired kind %s with a single player", i, p.Kind)
		}
		if p.SecondPlayer != nil {
			t.Fatalf("round %d: unexpected second player", i)
		}
		st = next
	}
}

func TestPairedKindsOnlyThemesWithSinglePlayer(t *testing.T) {
	// Only versus and confidence are playable; both need two players.
	e := catalogEngine(t, map[prompts.Category][]string{
		prompts.Versus:      {"bras de fer"},
		prompts.Confidence:  {"quel est son pire défaut ?"},
		prompts.Culture:     {"Quelle est la capitale de l'Italie ? (Rome)"},
		prompts.TrueOrFalse: {"Le soleil tourne autour de la Terre (faux)"},
	})
	cfg := mustConfig(t, testPlayers(1), []Theme{ThemeGames, ThemeOther}, 10, ModeClassic)
	for i := 0; i < 50; i++ {
		p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Kind != KindTrivia && p.Kind != KindTrueFalse {
			t.Fatalf("expected fallback to the default pool, got %s", p.Kind)
		}
	}
}

func TestPairedKindsPickDistinctSecondPlayer(t *testing.T) {
	e := defaultEngine(t, 11)
	cfg := mustConfig(t, testPlayers(4), []Theme{ThemeGames, ThemeOther}, 500, ModeClassic)
	st := RoundState{CurrentRound: 1}
	paired := 0
	for i := 0; i < 500; i++ {
		p, next, err := e.NextChallenge(cfg, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Kind == KindVersus || p.Kind == KindConfidence {
			paired++
			if p.SecondPlayer == nil {
				t.Fatalf("%s without a second player", p.Kind)
			}
			if p.SecondPlayer.ID == p.FeaturedPlayer.ID {
				t.Fatalf("%s pairs %s with themself", p.Kind, p.FeaturedPlayer.ID)
			}
		}
		st = next
	}
	if paired == 0 {
		t.Fatal("expected at least one paired challenge in 500 rounds")
	}
}

func TestClassicNeverYieldsIntenseOnlyKinds(t *testing.T) {
	e := defaultEngine(t, 5)
	cfg := mustConfig(t, testPlayers(3), []Theme{ThemeOther}, 1000, ModeClassic)
	st := RoundState{CurrentRound: 1}
	for i := 0; i < 1000; i++ {
		p, next, err := e.NextChallenge(cfg, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if IntenseOnly(p.Type) {
			t.Fatalf("classic mode produced %s (code %d)", p.Kind, p.Type)
		}
		st = next
	}
}

func TestIntenseCanYieldIntenseOnlyKinds(t *testing.T) {
	e := defaultEngine(t, 5)
	cfg := mustConfig(t, testPlayers(3), []Theme{ThemeOther}, 1000, ModeIntense)
	st := RoundState{CurrentRound: 1}
	seen := map[Kind]bool{}
	for i := 0; i < 1000; i++ {
		p, next, err := e.NextChallenge(cfg, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[p.Kind] = true
		st = next
	}
	for _, k := range []Kind{KindSoloUnlucky, KindGroupUnlucky, KindCurse} {
		if !seen[k] {
			t.Fatalf("expected intense mode to produce %s", k)
		}
	}
}

func TestIntensityLabelOnlyInIntenseMode(t *testing.T) {
	e := defaultEngine(t, 9)
	players := testPlayers(2)
	for i := 0; i < 200; i++ {
		classic, _, err := e.NextChallenge(mustConfig(t, players, AllThemes, 1, ModeClassic), RoundState{CurrentRound: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if classic.IntensityLabel != "" {
			t.Fatalf("classic payload carries intensity %q", classic.IntensityLabel)
		}
		intense, _, err := e.NextChallenge(mustConfig(t, players, AllThemes, 1, ModeIntense), RoundState{CurrentRound: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if intense.IntensityLabel != kinds[intense.Kind].intensity {
			t.Fatalf("intense payload for %s: expected %q, got %q", intense.Kind, kinds[intense.Kind].intensity, intense.IntensityLabel)
		}
	}
}

func TestNextChallengeUpdatesState(t *testing.T) {
	e := defaultEngine(t, 1)
	cfg := mustConfig(t, testPlayers(3), []Theme{ThemeDebates}, 5, ModeClassic)
	p, st, err := e.NextChallenge(cfg, RoundState{CurrentRound: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentRound != 2 {
		t.Fatalf("expected round index untouched, got %d", st.CurrentRound)
	}
	if st.PreviousPlayer == nil || st.PreviousPlayer.ID != p.FeaturedPlayer.ID {
		t.Fatalf("expected previous player %v, got %v", p.FeaturedPlayer, st.PreviousPlayer)
	}
	if st.PreviousTheme != ThemeDebates {
		t.Fatalf("expected previous theme %s, got %s", ThemeDebates, st.PreviousTheme)
	}
}

func TestNextChallengeRetriesEmptyCategory(t *testing.T) {
	e := catalogEngine(t, map[prompts.Category][]string{
		prompts.Culture: {"Qui a peint La Joconde ? (Léonard de Vinci)"},
	})
	cfg := mustConfig(t, testPlayers(2), []Theme{ThemeDebates, ThemeCulture}, 10, ModeClassic)
	for i := 0; i < 50; i++ {
		p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Kind != KindTrivia {
			t.Fatalf("expected trivia, got %s", p.Kind)
		}
		if p.Message == "" {
			t.Fatal("expected a non-empty message")
		}
	}
}

func TestNextChallengeFallsBackWhenSelectionHasNoContent(t *testing.T) {
	e := catalogEngine(t, map[prompts.Category][]string{
		prompts.TrueOrFalse: {"Le soleil tourne autour de la Terre (faux)"},
	})
	cfg := mustConfig(t, testPlayers(2), []Theme{ThemeDebates}, 10, ModeClassic)
	p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindTrueFalse || !p.IsTrueFalse {
		t.Fatalf("expected true/false fallback, got %s", p.Kind)
	}
}

func TestNextChallengeContentExhausted(t *testing.T) {
	e := catalogEngine(t, nil)
	cfg := mustConfig(t, testPlayers(2), AllThemes, 10, ModeIntense)
	_, st, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
	if !errors.Is(err, ErrContentExhausted) {
		t.Fatalf("expected ErrContentExhausted, got %v", err)
	}
	if st.PreviousPlayer != nil {
		t.Fatal("state should be untouched on failure")
	}
}

func TestNextChallengeRequiresPlayers(t *testing.T) {
	e := defaultEngine(t, 1)
	_, _, err := e.NextChallenge(GameConfiguration{Themes: AllThemes, TotalRounds: 3}, RoundState{CurrentRound: 1})
	if !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}
}

func TestNextChallengeWithoutThemes(t *testing.T) {
	e := defaultEngine(t, 1)
	_, _, err := e.NextChallenge(GameConfiguration{Players: testPlayers(2), TotalRounds: 3}, RoundState{CurrentRound: 1})
	if !errors.Is(err, ErrNoThemeSelected) {
		t.Fatalf("expected ErrNoThemeSelected, got %v", err)
	}
}

func TestNewConfigurationValidation(t *testing.T) {
	if _, err := NewConfiguration(nil, AllThemes, 10, ModeClassic); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}
	if _, err := NewConfiguration(testPlayers(2), nil, 10, ModeClassic); !errors.Is(err, ErrNoThemeSelected) {
		t.Fatalf("expected ErrNoThemeSelected, got %v", err)
	}
	if _, err := NewConfiguration(testPlayers(2), AllThemes, 0, ModeClassic); !errors.Is(err, ErrInvalidRounds) {
		t.Fatalf("expected ErrInvalidRounds, got %v", err)
	}
	cfg, err := NewConfiguration(testPlayers(2), AllThemes, 10, "bogus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeClassic {
		t.Fatalf("expected unknown mode to become classic, got %s", cfg.Mode)
	}
}

func TestTimedCategoryRound(t *testing.T) {
	e := catalogEngine(t, map[prompts.Category][]string{
		prompts.Categories: {"de fromages français"},
	})
	cfg := mustConfig(t, testPlayers(2), []Theme{ThemeCategory}, 10, ModeIntense)
	p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindCategory {
		t.Fatalf("expected timed category, got %s", p.Kind)
	}
	if p.CountdownSeconds != CountdownSeconds {
		t.Fatalf("expected %d second countdown, got %d", CountdownSeconds, p.CountdownSeconds)
	}
	if p.IntensityLabel != "10 🥃 max" {
		t.Fatalf("unexpected intensity %q", p.IntensityLabel)
	}
}

func TestTriviaWithoutAnswerHasNoReveal(t *testing.T) {
	raw := "Combien de continents compte la Terre ?"
	e := catalogEngine(t, map[prompts.Category][]string{prompts.Culture: {raw}})
	cfg := mustConfig(t, testPlayers(2), []Theme{ThemeCulture}, 10, ModeClassic)
	p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PromptText != raw {
		t.Fatalf("expected prompt %q, got %q", raw, p.PromptText)
	}
	if p.RevealableAnswer != "" || p.HasReveal() {
		t.Fatalf("expected no reveal step, got %q", p.RevealableAnswer)
	}
	if p.Message != p.FeaturedPlayer.Name+", "+raw {
		t.Fatalf("unexpected message %q", p.Message)
	}
}

func TestTriviaWithAnswerStartsUnrevealed(t *testing.T) {
	e := catalogEngine(t, map[prompts.Category][]string{
		prompts.Culture: {"Quel est le symbole chimique de l'or ? (Au)"},
	})
	cfg := mustConfig(t, testPlayers(2), []Theme{ThemeCulture}, 10, ModeClassic)
	p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PromptText != "Quel est le symbole chimique de l'or ?" {
		t.Fatalf("unexpected prompt %q", p.PromptText)
	}
	if !p.HasReveal() || p.RevealableAnswer != "Au" {
		t.Fatalf("expected revealable answer Au, got %q", p.RevealableAnswer)
	}
}

func TestVersusMessageNamesBothPlayers(t *testing.T) {
	e := catalogEngine(t, map[prompts.Category][]string{prompts.Versus: {"bras de fer"}})
	players := testPlayers(2)
	cfg := mustConfig(t, players, []Theme{ThemeGames}, 10, ModeClassic)
	p, _, err := e.NextChallenge(cfg, RoundState{CurrentRound: 1, PreviousPlayer: &players[0]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Joueur 1 et Joueur 0, bras de fer"
	if p.Message != want {
		t.Fatalf("expected %q, got %q", want, p.Message)
	}
}

func TestAdvanceContinues(t *testing.T) {
	e := defaultEngine(t, 2)
	cfg := mustConfig(t, testPlayers(3), AllThemes, 3, ModeClassic)
	_, st, err := e.Start(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentRound != 1 {
		t.Fatalf("expected first round, got %d", st.CurrentRound)
	}
	tr, err := e.Advance(cfg, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Kind != TransitionContinue || tr.Payload == nil {
		t.Fatalf("expected continue with payload, got %+v", tr)
	}
	if tr.State.CurrentRound != 2 {
		t.Fatalf("expected round 2, got %d", tr.State.CurrentRound)
	}
}

func TestAdvanceAtLastRoundCompletes(t *testing.T) {
	e := defaultEngine(t, 2)
	cfg := mustConfig(t, testPlayers(3), AllThemes, 3, ModeClassic)
	st := RoundState{CurrentRound: 3}
	for i := 0; i < 3; i++ {
		tr, err := e.Advance(cfg, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Kind != TransitionGameComplete {
			t.Fatalf("expected game complete, got %s", tr.Kind)
		}
		if tr.Payload != nil {
			t.Fatal("expected no payload once the game is complete")
		}
		if tr.State.CurrentRound != 3 {
			t.Fatalf("expected round index to stay at 3, got %d", tr.State.CurrentRound)
		}
		st = tr.State
	}
}

func TestFullGamePlaysExactlyTotalRounds(t *testing.T) {
	e := defaultEngine(t, 8)
	cfg := mustConfig(t, testPlayers(4), AllThemes, 15, ModeIntense)
	_, st, err := e.Start(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	played := 1
	for {
		tr, err := e.Advance(cfg, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Kind == TransitionGameComplete {
			break
		}
		played++
		st = tr.State
	}
	if played != 15 {
		t.Fatalf("expected 15 rounds, played %d", played)
	}
}
