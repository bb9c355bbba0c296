package engine

import (
	"github.com/LudovicRocher01/Glow/internal/prompts"
)

// Theme is a user-selectable group of challenge types.
type Theme string

const (
	ThemeNone        Theme = ""
	ThemeCategory    Theme = "category"
	ThemeNeverHave   Theme = "never_have"
	ThemeWhoWould    Theme = "who_would"
	ThemeGames       Theme = "games"
	ThemeDebates     Theme = "debates"
	ThemeCulture     Theme = "culture"
	ThemeTrueOrFalse Theme = "true_or_false"
	ThemeOther       Theme = "other"
)

// AllThemes lists the themes in the order the theme picker shows them.
var AllThemes = []Theme{
	ThemeCategory,
	ThemeNeverHave,
	ThemeCulture,
	ThemeTrueOrFalse,
	ThemeWhoWould,
	ThemeGames,
	ThemeDebates,
	ThemeOther,
}

type GameMode string

const (
	ModeClassic GameMode = "classic"
	ModeIntense GameMode = "glou"
)

// ChallengeType is a fine-grained prompt code. Several codes may share a
// Kind; the number of codes per kind weights how often it is drawn.
type ChallengeType int

// Kind is the behaviour behind a ChallengeType.
type Kind string

const (
	KindCategory      Kind = "category"
	KindDare          Kind = "dare"
	KindNeverHave     Kind = "never_have"
	KindWhoWould      Kind = "who_would"
	KindSoloUnlucky   Kind = "solo_unlucky"
	KindGroupUnlucky  Kind = "group_unlucky"
	KindVersus        Kind = "versus"
	KindMiniGame      Kind = "mini_game"
	KindCurse         Kind = "curse"
	KindDebate        Kind = "debate"
	KindRoundCategory Kind = "round_category"
	KindTrivia        Kind = "trivia"
	KindTrueFalse     Kind = "true_false"
	KindConfidence    Kind = "confidence"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// GameConfiguration is fixed for the lifetime of a game session.
type GameConfiguration struct {
	Players     []Player `json:"players"`
	Themes      []Theme  `json:"themes"`
	TotalRounds int      `json:"totalRounds"`
	Mode        GameMode `json:"mode"`
}

// RoundState is threaded through engine calls and replaced on every round.
type RoundState struct {
	CurrentRound   int     `json:"currentRound"`
	PreviousPlayer *Player `json:"previousPlayer,omitempty"`
	PreviousTheme  Theme   `json:"previousTheme,omitempty"`
}

// ChallengePayload is everything the presentation layer needs to render a round.
// Empty strings mean "absent" for the optional text fields.
type ChallengePayload struct {
	Type                ChallengeType `json:"type"`
	Kind                Kind          `json:"kind"`
	Theme               Theme         `json:"theme"`
	Title               string        `json:"title"`
	Icon                string        `json:"icon"`
	IntensityLabel      string        `json:"intensityLabel"`
	PromptText          string        `json:"promptText"`
	Message             string        `json:"message"`
	FeaturedPlayer      *Player       `json:"featuredPlayer,omitempty"`
	SecondPlayer        *Player       `json:"secondPlayer,omitempty"`
	RevealableAnswer    string        `json:"revealableAnswer,omitempty"`
	IsTrueFalse         bool          `json:"isTrueFalse"`
	CorrectAnswerIsTrue bool          `json:"correctAnswerIsTrue"`
	Justification       string        `json:"justification,omitempty"`
	Mode                GameMode      `json:"mode"`
	CountdownSeconds    int           `json:"countdownSeconds,omitempty"`
}

// HasReveal reports whether the round is two-phase (question, then answer).
func (p ChallengePayload) HasReveal() bool {
	return p.RevealableAnswer != ""
}

type TransitionKind string

const (
	TransitionContinue     TransitionKind = "continue"
	TransitionGameComplete TransitionKind = "game_complete"
)

type RoundTransition struct {
	Kind    TransitionKind    `json:"kind"`
	Payload *ChallengePayload `json:"payload,omitempty"`
	State   RoundState        `json:"state"`
}

type AnswerOutcome struct {
	IsCorrect      bool   `json:"isCorrect"`
	DisplayMessage string `json:"displayMessage"`
	PenaltyUnits   int    `json:"penaltyUnits"`
}

// typeInfo is the static description of a Kind.
type typeInfo struct {
	kind        Kind
	theme       Theme
	category    prompts.Category
	title       string
	icon        string
	intensity   string
	needsPair   bool
	timed       bool
	intenseOnly bool
}
