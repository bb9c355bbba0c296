// Package engine selects the challenge shown on each round of a game.
//
// The engine is pure with respect to the game session: configuration and
// round state are passed in and the updated state is returned. The only
// state it owns is its random source, so an Engine must not be shared
// between goroutines.
package engine

import (
	"errors"
	"math/rand"
	"sort"
	"strings"

	"github.com/LudovicRocher01/Glow/internal/prompts"
	"github.com/LudovicRocher01/Glow/internal/random"
	"github.com/rs/zerolog"
)

var (
	ErrNoPlayers        = errors.New("no players in configuration")
	ErrNoThemeSelected  = errors.New("no theme selected")
	ErrInvalidRounds    = errors.New("round count must be positive")
	ErrContentExhausted = errors.New("no playable challenge in prompt library")
)

// Library is the prompt catalog the engine draws from.
type Library interface {
	RandomPromptFor(category prompts.Category) (string, bool)
}

type Engine struct {
	lib Library
	rng *rand.Rand
	log zerolog.Logger
}

// New returns an engine drawing prompts from lib. A nil rng is replaced by
// one seeded from crypto/rand.
func New(lib Library, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = random.New()
	}
	return &Engine{lib: lib, rng: rng, log: zerolog.Nop()}
}

func (e *Engine) SetLogger(l zerolog.Logger) { e.log = l }

// NewConfiguration validates and builds a GameConfiguration.
func NewConfiguration(players []Player, themes []Theme, rounds int, mode GameMode) (GameConfiguration, error) {
	if len(players) == 0 {
		return GameConfiguration{}, ErrNoPlayers
	}
	if len(themes) == 0 {
		return GameConfiguration{}, ErrNoThemeSelected
	}
	if rounds <= 0 {
		return GameConfiguration{}, ErrInvalidRounds
	}
	if mode != ModeIntense {
		mode = ModeClassic
	}
	return GameConfiguration{
		Players:     append([]Player(nil), players...),
		Themes:      append([]Theme(nil), themes...),
		TotalRounds: rounds,
		Mode:        mode,
	}, nil
}

// EligibleTypes returns the sorted set of codes playable for the selection.
// An empty selection yields ErrNoThemeSelected; a selection emptied by the
// Classic filter yields the default pool.
func EligibleTypes(themes []Theme, mode GameMode) ([]ChallengeType, error) {
	if len(themes) == 0 {
		return nil, ErrNoThemeSelected
	}
	seen := make(map[ChallengeType]bool)
	out := make([]ChallengeType, 0, len(codes))
	for _, theme := range themes {
		for _, t := range themeCodes[theme] {
			if seen[t] {
				continue
			}
			seen[t] = true
			if mode != ModeIntense && IntenseOnly(t) {
				continue
			}
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return DefaultPool(), nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Start produces the first round of a game.
func (e *Engine) Start(cfg GameConfiguration) (ChallengePayload, RoundState, error) {
	return e.NextChallenge(cfg, RoundState{CurrentRound: 1})
}

// NextChallenge draws the challenge for the current round and returns the
// state to use for the following call.
func (e *Engine) NextChallenge(cfg GameConfiguration, st RoundState) (ChallengePayload, RoundState, error) {
	if len(cfg.Players) == 0 {
		return ChallengePayload{}, st, ErrNoPlayers
	}
	pool, err := EligibleTypes(cfg.Themes, cfg.Mode)
	if err != nil {
		return ChallengePayload{}, st, err
	}
	p, ok := e.pick(cfg, st, pool)
	if !ok {
		e.log.Debug().Ints("pool", typeInts(pool)).Msg("no playable challenge in selection, using default pool")
		p, ok = e.pick(cfg, st, defaultPool)
	}
	if !ok {
		return ChallengePayload{}, st, ErrContentExhausted
	}
	featured := *p.FeaturedPlayer
	st.PreviousPlayer = &featured
	st.PreviousTheme = p.Theme
	return p, st, nil
}

// Advance moves to the next round, or reports that the game is over.
func (e *Engine) Advance(cfg GameConfiguration, st RoundState) (RoundTransition, error) {
	if st.CurrentRound >= cfg.TotalRounds {
		return RoundTransition{Kind: TransitionGameComplete, State: st}, nil
	}
	next := st
	next.CurrentRound++
	p, next, err := e.NextChallenge(cfg, next)
	if err != nil {
		return RoundTransition{}, err
	}
	return RoundTransition{Kind: TransitionContinue, Payload: &p, State: next}, nil
}

// pick draws codes from pool until one composes into a payload. Codes of a
// kind that failed are dropped before the next draw.
func (e *Engine) pick(cfg GameConfiguration, st RoundState, pool []ChallengeType) (ChallengePayload, bool) {
	candidates := append([]ChallengeType(nil), pool...)
	for len(candidates) > 0 {
		t := candidates[e.rng.Intn(len(candidates))]
		p, ok := e.compose(t, cfg, st)
		if ok {
			return p, true
		}
		failed := codes[t]
		e.log.Debug().Int("type", int(t)).Str("kind", string(failed)).Msg("challenge type not playable, retrying")
		kept := candidates[:0]
		for _, c := range candidates {
			if codes[c] != failed {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}
	return ChallengePayload{}, false
}

func (e *Engine) compose(t ChallengeType, cfg GameConfiguration, st RoundState) (ChallengePayload, bool) {
	k, ok := codes[t]
	if !ok {
		return ChallengePayload{}, false
	}
	info := kinds[k]

	featured := e.featuredPlayer(cfg.Players, st.PreviousPlayer)
	var second *Player
	if info.needsPair {
		second = e.otherPlayer(cfg.Players, featured.ID)
		if second == nil {
			return ChallengePayload{}, false
		}
	}

	raw, ok := e.lib.RandomPromptFor(info.category)
	if !ok || strings.TrimSpace(raw) == "" {
		return ChallengePayload{}, false
	}

	p := ChallengePayload{
		Type:           t,
		Kind:           k,
		Theme:          info.theme,
		Title:          info.title,
		Icon:           info.icon,
		FeaturedPlayer: &featured,
		SecondPlayer:   second,
		Mode:           cfg.Mode,
	}
	if cfg.Mode == ModeIntense {
		p.IntensityLabel = info.intensity
	}
	if info.timed {
		p.CountdownSeconds = CountdownSeconds
	}

	prompt := strings.TrimSpace(raw)
	switch k {
	case KindTrivia:
		prompt, p.RevealableAnswer = ParseTrivia(raw)
	case KindTrueFalse:
		a := ParseTrueFalse(raw)
		prompt = a.Statement
		p.IsTrueFalse = true
		p.CorrectAnswerIsTrue = a.IsTrue
		p.Justification = a.Justification
	}
	if prompt == "" {
		return ChallengePayload{}, false
	}
	p.PromptText = prompt

	secondName := ""
	if second != nil {
		secondName = second.Name
	}
	p.Message = message(k, cfg.Mode, featured.Name, secondName, prompt)
	return p, true
}

// featuredPlayer draws uniformly among players other than prev. With a single
// player repetition is unavoidable.
func (e *Engine) featuredPlayer(players []Player, prev *Player) Player {
	if prev == nil || len(players) == 1 {
		return players[e.rng.Intn(len(players))]
	}
	for {
		p := players[e.rng.Intn(len(players))]
		if p.ID != prev.ID || !containsOther(players, prev.ID) {
			return p
		}
	}
}

func (e *Engine) otherPlayer(players []Player, excludeID string) *Player {
	others := make([]Player, 0, len(players))
	for _, p := range players {
		if p.ID != excludeID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return nil
	}
	p := others[e.rng.Intn(len(others))]
	return &p
}

func containsOther(players []Player, id string) bool {
	for _, p := range players {
		if p.ID != id {
			return true
		}
	}
	return false
}

func typeInts(ts []ChallengeType) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = int(t)
	}
	return out
}
