package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/LudovicRocher01/Glow/internal/cache"
	"github.com/LudovicRocher01/Glow/internal/config"
	"github.com/LudovicRocher01/Glow/internal/engine"
	"github.com/LudovicRocher01/Glow/internal/game"
	"github.com/LudovicRocher01/Glow/internal/identity"
	"github.com/LudovicRocher01/Glow/internal/prompts"
	"github.com/LudovicRocher01/Glow/internal/settings"
	settingssqlite "github.com/LudovicRocher01/Glow/internal/settings/sqlite"
	"github.com/LudovicRocher01/Glow/internal/ws"
	staticserver "github.com/LudovicRocher01/Glow/static"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Glou - party game challenge server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables (also read from .env):
  PORT              Port to listen on (default: 8080)
  GAME_IDENTITY     alkool, glou or glow (default: glou)
  SETTINGS_DB       SQLite file for settings and saved players (default: in memory)
  PROMPTS_FILE      JSON prompt catalog replacing the embedded one
  REDIS_ADDR        Redis address for session snapshots (default: disabled)
  REDIS_PASSWORD    Redis password
  SESSION_TTL       How long snapshots are kept (default: 6h)
  HOST_USER         Host interface username for basic auth
  HOST_PASS         Host interface password for basic auth
  SINGLE_SESSION    Allow only one active session (default: true)
  EXPORT_ENABLED    Append finished rounds to a text log (default: false)
  EXPORT_FILE       Path of the round log (default: ./glou-rounds.txt)
  PUBLIC_URL        Base URL encoded in join QR codes (default: http://localhost:8080)
  CHRONO_SECONDS    Length of timed category rounds (default: 30)
  LOG_LEVEL         debug, info, warn or error (default: info)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Glou %s\n", version)
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	id, ok := identity.Lookup(cfg.Identity)
	if !ok {
		log.Warn().Str("identity", cfg.Identity).Strs("known", identity.Names()).Str("using", id.Name).Msg("unknown game identity")
	}

	catalog, err := loadCatalog(cfg.PromptsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prompts")
	}
	logCatalog(catalog)

	store, closeStore, err := openSettings(cfg.SettingsDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open settings store")
	}
	defer closeStore()

	rm := game.NewRoomManager(catalog)
	rm.SetLogger(log.Logger)
	rm.SetSingleSession(cfg.SingleSession)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		sessions := cache.NewSessionCache(rdb, cfg.SessionTTL)
		rm.SetSnapshots(sessions)
		restoreSessions(rm, sessions)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		log.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC(), "version": version})
	})

	sock := ws.New(rm, store, id, cfg)
	io := sock.Mount(r)
	defer io.Close()

	r.GET("/api/identity", func(c *gin.Context) {
		c.JSON(http.StatusOK, id)
	})
	r.GET("/api/themes", func(c *gin.Context) {
		c.JSON(http.StatusOK, themeList(id))
	})

	r.GET("/api/session/active", func(c *gin.Context) {
		if code, sess := rm.Active(); sess != nil {
			c.JSON(http.StatusOK, gin.H{"sessionCode": code, "phase": sess.GetPhase()})
			return
		}
		c.Status(http.StatusNotFound)
	})
	r.GET("/api/session/:code/qr.png", func(c *gin.Context) {
		code := strings.ToUpper(c.Param("code"))
		if _, err := rm.Get(code); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		png, err := qrcode.Encode(joinURL(cfg.PublicURL, code), qrcode.Medium, 256)
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("failed to encode qr code")
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	hostGroup := r.Group("/")
	if cfg.HostAuth() {
		hostGroup.Use(gin.BasicAuth(gin.Accounts{cfg.HostUser: cfg.HostPass}))
	}
	// Host-protected routes (serves the SPA index behind basic auth)
	hostGroup.GET("/host", func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})
	hostGroup.GET("/host/*any", func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})
	type createReq struct {
		Settings *settings.Settings `json:"settings"`
	}
	hostGroup.POST("/api/host/create", func(c *gin.Context) {
		var req createReq
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_settings"})
			return
		}
		code, hostToken, err := sock.CreateSession(c.Request.Context(), req.Settings)
		if errors.Is(err, ws.ErrUnknownLength) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_length"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
			return
		}
		log.Info().Str("code", code).Msg("session created over http")
		c.JSON(http.StatusOK, gin.H{"sessionCode": code, "hostToken": hostToken})
	})

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Info().Str("port", cfg.Port).Str("identity", id.Name).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func loadCatalog(path string) (*prompts.Catalog, error) {
	if path == "" {
		return prompts.Default()
	}
	return prompts.Load(path)
}

func logCatalog(c *prompts.Catalog) {
	ev := log.Info()
	for _, cat := range c.Categories() {
		ev = ev.Int(string(cat), c.Count(cat))
	}
	ev.Msg("prompts loaded")
}

func openSettings(path string) (settings.Store, func(), error) {
	if path == "" {
		return settings.NewMemory(), func() {}, nil
	}
	store, err := settingssqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close settings store")
		}
	}, nil
}

// restoreSessions reloads games that were running before a restart.
func restoreSessions(rm *game.RoomManager, sessions cache.SessionCache) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	codes, err := sessions.Codes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list session snapshots")
		return
	}
	for _, code := range codes {
		snap, err := sessions.Get(ctx, code)
		if err != nil || snap == nil {
			log.Warn().Err(err).Str("code", code).Msg("failed to read session snapshot")
			continue
		}
		if _, err := rm.Restore(snap); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("failed to restore session")
			continue
		}
		log.Info().Str("code", code).Str("phase", string(snap.Phase)).Msg("session restored")
	}
}

type themeInfo struct {
	identity.ThemeLabel
	Codes       []engine.ChallengeType `json:"codes"`
	IntenseOnly []engine.ChallengeType `json:"intenseOnly,omitempty"`
}

func themeList(id identity.Identity) []themeInfo {
	out := make([]themeInfo, 0, len(id.Themes))
	for _, l := range id.Themes {
		info := themeInfo{ThemeLabel: l, Codes: engine.CodesFor(l.Theme)}
		for _, t := range info.Codes {
			if engine.IntenseOnly(t) {
				info.IntenseOnly = append(info.IntenseOnly, t)
			}
		}
		out = append(out, info)
	}
	return out
}

func joinURL(base, code string) string {
	return strings.TrimRight(base, "/") + "/?session=" + code
}
