package game

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotHost          = errors.New("not host")
	ErrInvalidPhase     = errors.New("invalid phase for action")
	ErrEmptyName        = errors.New("player name is required")
	ErrAvatarTaken      = errors.New("avatar already taken")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrRevealPending    = errors.New("answer not revealed yet")
	ErrNothingToReveal  = errors.New("round has no answer to reveal")
	ErrNotTrueFalse     = errors.New("round is not a true or false question")
	ErrAlreadyAnswered  = errors.New("round already answered")
	ErrBadSnapshot      = errors.New("snapshot is missing code or host token")
)

// Snapshots receives the state of a session after every change.
type Snapshots interface {
	Set(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, code string) error
}

const snapshotTimeout = 2 * time.Second

type SessionCtx struct {
	Code      string
	CreatedAt time.Time
	HostToken string

	Phase    Phase
	Settings settings.Settings

	players []engine.Player
	config  *engine.GameConfiguration
	state   engine.RoundState
	rounds  []*Round

	// export progress for the current game
	exported  int
	endLogged bool

	eng     *engine.Engine
	publish func(*Snapshot)

	mu sync.Mutex
}

type RoomManager struct {
	mu       sync.RWMutex
	sessions map[string]*SessionCtx
	active   string // most recently created session
	single   bool

	lib       engine.Library
	snapshots Snapshots
	onDrop    func(code string)
	log       zerolog.Logger
}

func NewRoomManager(lib engine.Library) *RoomManager {
	return &RoomManager{sessions: make(map[string]*SessionCtx), lib: lib, log: zerolog.Nop()}
}

func (rm *RoomManager) SetLogger(l zerolog.Logger) { rm.log = l }
func (rm *RoomManager) SetSnapshots(s Snapshots) { rm.snapshots = s }

// SetSingleSession makes CreateSession drop every other session.
func (rm *RoomManager) SetSingleSession(v bool) { rm.single = v }

// SetDropHandler registers fn to be called with the code of every session
// dropped in single-session mode.
func (rm *RoomManager) SetDropHandler(fn func(code string)) { rm.onDrop = fn }

func (rm *RoomManager) CreateSession(st settings.Settings) (code string, hostToken string, err error) {
	rm.mu.Lock()
	code = randomCode(5)
	for rm.sessions[code] != nil {
		code = randomCode(5)
	}
	hostToken = uuid.NewString()
	s := &SessionCtx{
		Code:      code,
		CreatedAt: time.Now().UTC(),
		HostToken: hostToken,
		Phase:     PhaseLobby,
		Settings:  st,
	}
	var dropped []string
	if rm.single {
		for old := range rm.sessions {
			delete(rm.sessions, old)
			dropped = append(dropped, old)
		}
	}
	rm.attach(s)
	rm.sessions[code] = s
	rm.active = code
	rm.mu.Unlock()

	for _, old := range dropped {
		rm.forget(old)
		if rm.onDrop != nil {
			rm.onDrop(old)
		}
	}
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
	return code, hostToken, nil
}

// Restore registers a session rebuilt from a snapshot. The next challenges
// are drawn with a fresh random source.
func (rm *RoomManager) Restore(snap *Snapshot) (*SessionCtx, error) {
	if snap == nil || snap.Code == "" || snap.HostToken == "" {
		return nil, ErrBadSnapshot
	}
	s := &SessionCtx{
		Code:      snap.Code,
		CreatedAt: snap.CreatedAt,
		HostToken: snap.HostToken,
		Phase:     snap.Phase,
		Settings:  snap.Settings,
		players:   append([]engine.Player(nil), snap.Players...),
		state:     snap.State,
	}
	if snap.Config != nil {
		cfg := *snap.Config
		s.config = &cfg
	}
	for i := range snap.Rounds {
		r := snap.Rounds[i]
		s.rounds = append(s.rounds, &r)
	}
	switch {
	case s.Phase == PhasePlaying && (s.config == nil || len(s.rounds) == 0):
		s.Phase = PhaseLobby
		s.config, s.rounds, s.state = nil, nil, engine.RoundState{}
	case s.Phase != PhasePlaying && s.Phase != PhaseEnd:
		s.Phase = PhaseLobby
	}
	s.exported = s.concludedLocked()
	s.endLogged = s.Phase == PhaseEnd

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.attach(s)
	rm.sessions[s.Code] = s
	if rm.active == "" {
		rm.active = s.Code
	}
	return s, nil
}

func (rm *RoomManager) Get(code string) (*SessionCtx, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	s := rm.sessions[code]
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (rm *RoomManager) Active() (string, *SessionCtx) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	if rm.active == "" {
		return "", nil
	}
	return rm.active, rm.sessions[rm.active]
}

func (rm *RoomManager) attach(s *SessionCtx) {
	s.eng = engine.New(rm.lib, nil)
	s.eng.SetLogger(rm.log.With().Str("code", s.Code).Logger())
	s.publish = rm.save
}

func (rm *RoomManager) save(snap *Snapshot) {
	if rm.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := rm.snapshots.Set(ctx, snap); err != nil {
		rm.log.Warn().Err(err).Str("code", snap.Code).Msg("failed to store session snapshot")
	}
}

func (rm *RoomManager) forget(code string) {
	if rm.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := rm.snapshots.Delete(ctx, code); err != nil {
		rm.log.Warn().Err(err).Str("code", code).Msg("failed to drop session snapshot")
	}
}

// AddPlayer adds a player to the lobby. The name is trimmed and must not be
// empty; a non-empty avatar must not be used by another player.
func (s *SessionCtx) AddPlayer(hostToken, name, avatar string) (engine.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return engine.Player{}, ErrNotHost
	}
	if s.Phase != PhaseLobby {
		return engine.Player{}, ErrInvalidPhase
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return engine.Player{}, ErrEmptyName
	}
	avatar = strings.TrimSpace(avatar)
	if avatar != "" {
		for _, p := range s.players {
			if p.Avatar == avatar {
				return engine.Player{}, ErrAvatarTaken
			}
		}
	}
	p := engine.Player{ID: uuid.NewString(), Name: name, Avatar: avatar}
	s.players = append(s.players, p)
	s.publishLocked()
	return p, nil
}

func (s *SessionCtx) RemovePlayer(hostToken, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return ErrNotHost
	}
	if s.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	for i, p := range s.players {
		if p.ID == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			s.publishLocked()
			return nil
		}
	}
	return ErrPlayerNotFound
}

func (s *SessionCtx) UpdateSettings(hostToken string, st settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return ErrNotHost
	}
	if s.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	st.Themes = append([]string(nil), st.Themes...)
	s.Settings = st
	s.publishLocked()
	return nil
}

// Start builds the game configuration from the lobby and draws the first round.
func (s *SessionCtx) Start(hostToken string) (engine.ChallengePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return engine.ChallengePayload{}, ErrNotHost
	}
	if s.Phase != PhaseLobby {
		return engine.ChallengePayload{}, ErrInvalidPhase
	}
	if len(s.players) < MinPlayers {
		return engine.ChallengePayload{}, ErrNotEnoughPlayers
	}
	r := settings.Resolve(s.Settings)
	cfg, err := engine.NewConfiguration(s.players, r.Themes, r.Rounds, r.Mode)
	if err != nil {
		return engine.ChallengePayload{}, err
	}
	return s.beginLocked(cfg)
}

// Next moves past the current round. A round whose answer was never revealed
// cannot be skipped.
func (s *SessionCtx) Next(hostToken string) (engine.RoundTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return engine.RoundTransition{}, ErrNotHost
	}
	if s.Phase != PhasePlaying || s.config == nil {
		return engine.RoundTransition{}, ErrInvalidPhase
	}
	if cur := s.currentLocked(); cur != nil && cur.Challenge.HasReveal() && !cur.Revealed {
		return engine.RoundTransition{}, ErrRevealPending
	}
	tr, err := s.eng.Advance(*s.config, s.state)
	if err != nil {
		return engine.RoundTransition{}, err
	}
	s.state = tr.State
	if tr.Kind == engine.TransitionGameComplete {
		s.Phase = PhaseEnd
	} else {
		s.rounds = append(s.rounds, &Round{Index: tr.State.CurrentRound, Challenge: *tr.Payload, ShownAt: time.Now().UTC()})
	}
	s.publishLocked()
	return tr, nil
}

// Reveal marks the current round's answer as shown and returns it.
func (s *SessionCtx) Reveal(hostToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return "", ErrNotHost
	}
	if s.Phase != PhasePlaying {
		return "", ErrInvalidPhase
	}
	cur := s.currentLocked()
	if cur == nil || !cur.Challenge.HasReveal() {
		return "", ErrNothingToReveal
	}
	cur.Revealed = true
	s.publishLocked()
	return cur.Challenge.RevealableAnswer, nil
}

// Answer resolves the guess for a true/false round. Each round takes one guess.
func (s *SessionCtx) Answer(hostToken string, guessIsTrue bool) (engine.AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return engine.AnswerOutcome{}, ErrNotHost
	}
	if s.Phase != PhasePlaying {
		return engine.AnswerOutcome{}, ErrInvalidPhase
	}
	cur := s.currentLocked()
	if cur == nil || !cur.Challenge.IsTrueFalse {
		return engine.AnswerOutcome{}, ErrNotTrueFalse
	}
	if cur.Answer != nil {
		return engine.AnswerOutcome{}, ErrAlreadyAnswered
	}
	out := engine.ResolveTrueFalseAnswer(cur.Challenge, guessIsTrue)
	cur.Answer = &out
	s.publishLocked()
	return out, nil
}

// Replay starts a new game with the configuration of the one that just ended.
func (s *SessionCtx) Replay(hostToken string) (engine.ChallengePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return engine.ChallengePayload{}, ErrNotHost
	}
	if s.Phase != PhaseEnd || s.config == nil {
		return engine.ChallengePayload{}, ErrInvalidPhase
	}
	return s.beginLocked(*s.config)
}

// Quit abandons the game and returns to the lobby. Players and settings stay.
func (s *SessionCtx) Quit(hostToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostToken != s.HostToken {
		return ErrNotHost
	}
	s.Phase = PhaseLobby
	s.config = nil
	s.state = engine.RoundState{}
	s.rounds = nil
	s.exported, s.endLogged = 0, false
	s.publishLocked()
	return nil
}

func (s *SessionCtx) beginLocked(cfg engine.GameConfiguration) (engine.ChallengePayload, error) {
	p, st, err := s.eng.Start(cfg)
	if err != nil {
		return engine.ChallengePayload{}, err
	}
	s.config = &cfg
	s.state = st
	s.rounds = []*Round{{Index: st.CurrentRound, Challenge: p, ShownAt: time.Now().UTC()}}
	s.exported, s.endLogged = 0, false
	s.Phase = PhasePlaying
	s.publishLocked()
	return p, nil
}

func (s *SessionCtx) currentLocked() *Round {
	if len(s.rounds) == 0 {
		return nil
	}
	return s.rounds[len(s.rounds)-1]
}

// concludedLocked counts rounds that can no longer change.
func (s *SessionCtx) concludedLocked() int {
	if s.Phase == PhaseEnd {
		return len(s.rounds)
	}
	if len(s.rounds) == 0 {
		return 0
	}
	return len(s.rounds) - 1
}

func (s *SessionCtx) GetPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Phase
}

func (s *SessionCtx) Players() []engine.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.Player(nil), s.players...)
}

// Current returns the round on screen, if a game is running.
func (s *SessionCtx) Current() (Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhasePlaying {
		return Round{}, false
	}
	cur := s.currentLocked()
	if cur == nil {
		return Round{}, false
	}
	return copyRound(cur), true
}

func (s *SessionCtx) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionCtx) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Code:      s.Code,
		HostToken: s.HostToken,
		CreatedAt: s.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Phase:     s.Phase,
		Settings:  s.Settings,
		Players:   append([]engine.Player(nil), s.players...),
		State:     s.state,
		Rounds:    make([]Round, 0, len(s.rounds)),
	}
	snap.Settings.Themes = append([]string(nil), s.Settings.Themes...)
	if s.config != nil {
		cfg := *s.config
		snap.Config = &cfg
	}
	for _, r := range s.rounds {
		snap.Rounds = append(snap.Rounds, copyRound(r))
	}
	return snap
}

func (s *SessionCtx) publishLocked() {
	if s.publish != nil {
		s.publish(s.snapshotLocked())
	}
}

func copyRound(r *Round) Round {
	out := *r
	if r.Answer != nil {
		a := *r.Answer
		out.Answer = &a
	}
	return out
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
