package game

import (
	"time"

	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/settings"
)

type Phase string

const (
	PhaseLobby   Phase = "Lobby"
	PhasePlaying Phase = "Playing"
	PhaseEnd     Phase = "End"
)

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 2

// Round is one challenge shown during a game, with what happened to it.
type Round struct {
	Index     int                     `json:"index"`
	Challenge engine.ChallengePayload `json:"challenge"`
	Revealed  bool                    `json:"revealed"`
	Answer    *engine.AnswerOutcome   `json:"answer,omitempty"`
	ShownAt   time.Time               `json:"shownAt"`
}

// Snapshot is the serialisable state of a session.
type Snapshot struct {
	Code      string                    `json:"code"`
	HostToken string                    `json:"hostToken"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	Phase     Phase                     `json:"phase"`
	Settings  settings.Settings         `json:"settings"`
	Players   []engine.Player           `json:"players"`
	Config    *engine.GameConfiguration `json:"config,omitempty"`
	State     engine.RoundState         `json:"state"`
	Rounds    []Round                   `json:"rounds"`
}
