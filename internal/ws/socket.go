package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/LudovicRocher01/Glow/internal/config"
	"github.com/LudovicRocher01/Glow/internal/countdown"
	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/game"
	"github.com/LudovicRocher01/Glow/internal/identity"
	"github.com/LudovicRocher01/Glow/internal/settings"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

const storeTimeout = 2 * time.Second

var ErrUnknownLength = errors.New("question count is not an offered game length")

type ConnCtx struct {
	Code  string
	Token string
	Role  string // "host" | "viewer"
}

type Server struct {
	RM     *game.RoomManager
	store    settings.Store
	identity identity.Identity
	config   config.Config
	tick     time.Duration

	io *socketio.Server

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // sessionCode -> socketID -> Conn
	chronos map[string]context.CancelFunc      // sessionCode -> running countdown
}

func New(rm *game.RoomManager, store settings.Store, id identity.Identity, cfg config.Config) *Server {
	srv := &Server{
		RM:       rm,
		store:    store,
		identity: id,
		config:   cfg,
		tick:     time.Second,
		members:  make(map[string]map[string]socketio.Conn),
		chronos:  make(map[string]context.CancelFunc),
	}
	rm.SetDropHandler(srv.dropSession)
	return srv
}

// CreateSession opens a lobby with st, or with the saved settings when st is
// nil, and seats the saved roster.
func (srv *Server) CreateSession(ctx context.Context, st *settings.Settings) (code, hostToken string, err error) {
	chosen := settings.Defaults()
	if st != nil {
		if err := srv.checkLength(*st); err != nil {
			return "", "", err
		}
		chosen = *st
	} else if saved, err := srv.store.Load(ctx); err == nil {
		chosen = saved
	} else {
		log.Warn().Err(err).Msg("failed to load saved settings")
	}
	code, hostToken, err = srv.RM.CreateSession(chosen)
	if err != nil {
		return "", "", err
	}
	sess, err := srv.RM.Get(code)
	if err != nil {
		return "", "", err
	}
	srv.seedRoster(ctx, sess)
	return code, hostToken, nil
}

// Mount attaches Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// game:create
	io.OnEvent("/", "game:create", func(s socketio.Conn, payload struct {
		Settings *settings.Settings `json:"settings"`
	}) map[string]any {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		code, hostToken, err := srv.CreateSession(ctx, payload.Settings)
		if err != nil {
			return srv.fail(s, err)
		}

		s.SetContext(&ConnCtx{Code: code, Token: hostToken, Role: "host"})
		s.Join(code)
		srv.addMember(code, s)
		log.Info().Str("sid", s.ID()).Str("code", code).Msg("game:create")
		srv.emitStateTo(code)
		return map[string]any{"sessionCode": code, "hostToken": hostToken}
	})

	// game:resume (reconnection, or a shared screen joining as viewer)
	io.OnEvent("/", "game:resume", func(s socketio.Conn, payload struct {
		SessionCode string `json:"sessionCode"`
		Role        string `json:"role"`
		Token       string `json:"token"`
	}) map[string]any {
		sess, err := srv.RM.Get(payload.SessionCode)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		role := "viewer"
		if payload.Role == "host" {
			if payload.Token != sess.HostToken {
				return srv.err(s, "unauthorized", "Invalid host token")
			}
			role = "host"
		}
		s.SetContext(&ConnCtx{Code: payload.SessionCode, Token: payload.Token, Role: role})
		s.Join(payload.SessionCode)
		srv.addMember(payload.SessionCode, s)
		log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Str("role", role).Msg("game:resume")
		s.Emit("game:state", stateFor(sess, role))
		return map[string]any{"ok": true, "role": role}
	})

	// game:addPlayer (host)
	io.OnEvent("/", "game:addPlayer", func(s socketio.Conn, payload struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		p, err := srv.addPlayer(sess, ctx.Token, payload.Name, payload.Avatar)
		if err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Str("playerId", p.ID).Msg("game:addPlayer")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"player": p}
	})

	// game:removePlayer (host)
	io.OnEvent("/", "game:removePlayer", func(s socketio.Conn, payload struct {
		PlayerID string `json:"playerId"`
	}) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		if err := srv.removePlayer(sess, ctx.Token, payload.PlayerID); err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Str("playerId", payload.PlayerID).Msg("game:removePlayer")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"ok": true}
	})

	// game:settings (host)
	io.OnEvent("/", "game:settings", func(s socketio.Conn, payload struct {
		Settings settings.Settings `json:"settings"`
	}) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		if err := srv.updateSettings(sess, ctx.Token, payload.Settings); err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Msg("game:settings")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"settings": settings.Resolve(payload.Settings)}
	})

	// game:start (host)
	io.OnEvent("/", "game:start", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		p, err := sess.Start(ctx.Token)
		if err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Str("kind", string(p.Kind)).Msg("game:start")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"challenge": p}
	})

	// game:next (host)
	io.OnEvent("/", "game:next", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		tr, err := sess.Next(ctx.Token)
		if err != nil {
			return srv.fail(s, err)
		}
		srv.stopChrono(ctx.Code)
		srv.export(sess)
		ev := log.Info().Str("code", ctx.Code).Str("transition", string(tr.Kind))
		if tr.Payload != nil {
			ev = ev.Int("round", tr.State.CurrentRound).Str("kind", string(tr.Payload.Kind))
		}
		ev.Msg("game:next")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"transition": tr}
	})

	// game:reveal (host)
	io.OnEvent("/", "game:reveal", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		answer, err := sess.Reveal(ctx.Token)
		if err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Msg("game:reveal")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"answer": answer}
	})

	// game:answer (host, true/false rounds)
	io.OnEvent("/", "game:answer", func(s socketio.Conn, payload struct {
		IsTrue bool `json:"isTrue"`
	}) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		out, err := sess.Answer(ctx.Token, payload.IsTrue)
		if err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Bool("correct", out.IsCorrect).Msg("game:answer")
		io.BroadcastToRoom("/", ctx.Code, "game:answer", out)
		srv.emitStateTo(ctx.Code)
		return map[string]any{"outcome": out}
	})

	// game:chrono (host, timed category rounds)
	io.OnEvent("/", "game:chrono", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		if ctx.Role != "host" || ctx.Token != sess.HostToken {
			return srv.fail(s, game.ErrNotHost)
		}
		cur, ok := sess.Current()
		if !ok || cur.Challenge.CountdownSeconds == 0 {
			return srv.err(s, "no_timer", "This round has no timer")
		}
		seconds := srv.config.ChronoSeconds
		if seconds <= 0 {
			seconds = cur.Challenge.CountdownSeconds
		}
		srv.startChrono(ctx.Code, cur.Index, seconds)
		log.Info().Str("code", ctx.Code).Int("round", cur.Index).Int("seconds", seconds).Msg("game:chrono")
		return map[string]any{"seconds": seconds}
	})

	// game:replay (host)
	io.OnEvent("/", "game:replay", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		p, err := sess.Replay(ctx.Token)
		if err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Msg("game:replay")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"challenge": p}
	})

	// game:quit (host)
	io.OnEvent("/", "game:quit", func(s socketio.Conn) map[string]any {
		ctx, sess, ack := srv.session(s)
		if ack != nil {
			return ack
		}
		if err := srv.quit(sess, ctx.Token); err != nil {
			return srv.fail(s, err)
		}
		log.Info().Str("code", ctx.Code).Msg("game:quit")
		srv.emitStateTo(ctx.Code)
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Code != "" {
			srv.removeMember(ctx.Code, s)
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// session resolves the connection's session. A non-nil ack means the
// lookup failed and should be returned to the client as is.
func (srv *Server) session(s socketio.Conn) (*ConnCtx, *game.SessionCtx, map[string]any) {
	ctx, ok := s.Context().(*ConnCtx)
	if !ok || ctx.Code == "" {
		return nil, nil, srv.err(s, "session_not_found", "Session not found")
	}
	sess, err := srv.RM.Get(ctx.Code)
	if err != nil {
		return nil, nil, srv.err(s, "session_not_found", "Session not found")
	}
	return ctx, sess, nil
}

func (srv *Server) seedRoster(ctx context.Context, sess *game.SessionCtx) {
	players, err := srv.store.Players(ctx)
	if err != nil {
		log.Warn().Err(err).Str("code", sess.Code).Msg("failed to load saved players")
		return
	}
	for _, p := range players {
		if _, err := sess.AddPlayer(sess.HostToken, p.Name, p.Avatar); err != nil {
			log.Warn().Err(err).Str("code", sess.Code).Str("name", p.Name).Msg("skipped saved player")
		}
	}
}

func (srv *Server) addPlayer(sess *game.SessionCtx, token, name, avatar string) (engine.Player, error) {
	p, err := sess.AddPlayer(token, name, avatar)
	if err != nil {
		return engine.Player{}, err
	}
	srv.saveRoster(sess)
	return p, nil
}

func (srv *Server) removePlayer(sess *game.SessionCtx, token, playerID string) error {
	if err := sess.RemovePlayer(token, playerID); err != nil {
		return err
	}
	srv.saveRoster(sess)
	return nil
}

// updateSettings applies st to the lobby and keeps it for the next session.
func (srv *Server) updateSettings(sess *game.SessionCtx, token string, st settings.Settings) error {
	if err := srv.checkLength(st); err != nil {
		return err
	}
	if err := sess.UpdateSettings(token, st); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := srv.store.Save(ctx, st); err != nil {
		log.Warn().Err(err).Str("code", sess.Code).Msg("failed to save settings")
	}
	return nil
}

// checkLength accepts the offered presets and a zero count, which means the default.
func (srv *Server) checkLength(st settings.Settings) error {
	if st.QuestionCount > 0 && !srv.identity.HasPreset(st.QuestionCount) {
		return ErrUnknownLength
	}
	return nil
}

// quit logs the game being abandoned and returns the session to its lobby.
func (srv *Server) quit(sess *game.SessionCtx, token string) error {
	if token != sess.HostToken {
		return game.ErrNotHost
	}
	if srv.config.ExportEnabled {
		if _, err := game.ExportAbandoned(sess, srv.config.ExportFile); err != nil {
			log.Error().Err(err).Str("code", sess.Code).Msg("failed to export game data")
		}
	}
	if err := sess.Quit(token); err != nil {
		return err
	}
	srv.stopChrono(sess.Code)
	return nil
}

func (srv *Server) saveRoster(sess *game.SessionCtx) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := srv.store.SavePlayers(ctx, sess.Players()); err != nil {
		log.Warn().Err(err).Str("code", sess.Code).Msg("failed to save players")
	}
}

func (srv *Server) export(sess *game.SessionCtx) {
	if !srv.config.ExportEnabled {
		return
	}
	n, err := game.ExportSession(sess, srv.config.ExportFile)
	if err != nil {
		log.Error().Err(err).Str("code", sess.Code).Msg("failed to export game data")
		return
	}
	if n > 0 {
		log.Info().Str("code", sess.Code).Str("file", srv.config.ExportFile).Int("rounds", n).Msg("exported game data")
	}
}

// startChrono replaces any countdown running for the session.
func (srv *Server) startChrono(code string, round, seconds int) {
	ctx, cancel := context.WithCancel(context.Background())
	srv.mu.Lock()
	if prev := srv.chronos[code]; prev != nil {
		prev()
	}
	srv.chronos[code] = cancel
	srv.mu.Unlock()

	go func() {
		cd := countdown.Countdown{Seconds: seconds, Interval: srv.tick}
		done := cd.Run(ctx, func(remaining int) {
			srv.io.BroadcastToRoom("/", code, "game:tick", map[string]any{"round": round, "remaining": remaining})
		})
		if done {
			srv.io.BroadcastToRoom("/", code, "game:timeUp", map[string]any{"round": round})
			log.Info().Str("code", code).Int("round", round).Msg("game:timeUp")
		}
		srv.mu.Lock()
		if srv.chronos[code] != nil && ctx.Err() == nil {
			delete(srv.chronos, code)
		}
		srv.mu.Unlock()
		cancel()
	}()
}

func (srv *Server) stopChrono(code string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if cancel := srv.chronos[code]; cancel != nil {
		cancel()
		delete(srv.chronos, code)
	}
}

// dropSession forgets a session replaced in single-session mode and tells its
// sockets.
func (srv *Server) dropSession(code string) {
	srv.stopChrono(code)
	srv.mu.Lock()
	conns := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		conns = append(conns, c)
	}
	delete(srv.members, code)
	srv.mu.Unlock()

	for _, c := range conns {
		c.Leave(code)
		c.SetContext(&ConnCtx{})
		c.Emit("game:closed", map[string]any{"sessionCode": code})
	}
	log.Info().Str("code", code).Int("sockets", len(conns)).Msg("session dropped")
}

func (srv *Server) addMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
	}
}

func (srv *Server) emitStateTo(code string) {
	sess, err := srv.RM.Get(code)
	if err != nil {
		return
	}
	srv.mu.Lock()
	conns := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		conns = append(conns, c)
	}
	srv.mu.Unlock()

	for _, c := range conns {
		role := "viewer"
		if ctx, ok := c.Context().(*ConnCtx); ok && ctx.Role == "host" {
			role = "host"
		}
		c.Emit("game:state", stateFor(sess, role))
	}
}

func stateFor(sess *game.SessionCtx, role string) map[string]any {
	snap := sess.Snapshot()
	payload := map[string]any{
		"sessionCode":  snap.Code,
		"phase":        string(snap.Phase),
		"players":      snap.Players,
		"settings":     snap.Settings,
		"resolved":     settings.Resolve(snap.Settings),
		"you":          map[string]any{"role": role},
		"roundsPlayed": len(snap.Rounds),
	}
	if snap.Config != nil {
		payload["totalRounds"] = snap.Config.TotalRounds
		payload["mode"] = snap.Config.Mode
	}
	if snap.Phase == game.PhasePlaying && len(snap.Rounds) > 0 {
		payload["round"] = publicRound(snap.Rounds[len(snap.Rounds)-1], role)
	}
	return payload
}

// publicRound hides answers that the table has not seen yet from viewers.
func publicRound(r game.Round, role string) game.Round {
	if role == "host" {
		return r
	}
	if r.Challenge.HasReveal() && !r.Revealed {
		r.Challenge.RevealableAnswer = ""
	}
	if r.Challenge.IsTrueFalse && r.Answer == nil {
		r.Challenge.CorrectAnswerIsTrue = false
		r.Challenge.Justification = ""
	}
	return r
}

func (srv *Server) fail(s socketio.Conn, err error) map[string]any {
	return srv.err(s, errorCode(err), err.Error())
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, game.ErrNotHost):
		return "unauthorized"
	case errors.Is(err, game.ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, game.ErrRevealPending):
		return "reveal_pending"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, engine.ErrNoThemeSelected):
		return "no_theme_selected"
	case errors.Is(err, engine.ErrContentExhausted):
		return "content_exhausted"
	case errors.Is(err, ErrUnknownLength):
		return "invalid_length"
	default:
		return "bad_request"
	}
}
