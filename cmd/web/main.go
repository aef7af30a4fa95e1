// cmd/web/main.go
//
// Relay – HTTP/WebSocket entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + RELAY_ env overlay, Vault-resolved secrets).
//
//  4. Open the optional GeoLite2 database for request enrichment.
//
//  5. Build the session store – sqlx/MySQL when a DSN is configured,
//     in-memory LRU otherwise.
//
//  6. Compose the module pipeline (debug dump + WebSocket echo demo).
//
//  7. Run the listener under an errgroup until SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yanizio/relay/internal/auth"
	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/database"
	"github.com/yanizio/relay/internal/logger"
	"github.com/yanizio/relay/internal/pipeline"
	"github.com/yanizio/relay/internal/requestinfo"
	"github.com/yanizio/relay/internal/server"
	"github.com/yanizio/relay/internal/session"

	"github.com/yanizio/relay/modules/debug"
	"github.com/yanizio/relay/modules/echo"
)

const serverEnvPath = "/usr/local/etc/relay/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Geo enrichment (optional) ───────────────────────────────────
	//
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geo lookups disabled", "err", err)
		}
	}

	//
	// ── 3.  Session store ───────────────────────────────────────────────
	//
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var sessions session.Store
	identity := auth.FromRequest
	if cfg.Session.Backend == "mysql" {
		db, err := database.Open(cfg.Session.DSN)
		if err != nil {
			logOut.Fatalf("connect session DB: %v", err)
		}
		defer db.Close()
		sessions = session.NewSQLStore(db, ttl)
		// With a database at hand the identity hook can resolve roles too.
		identity = auth.WithRoles(db)
		logOut.Infow("session store online", "backend", "mysql")
	} else {
		sessions = session.NewMemoryStore(cfg.Session.MaxEntries, ttl)
		logOut.Infow("session store online", "backend", "memory",
			"max_entries", cfg.Session.MaxEntries)
	}

	//
	// ── 4.  Pipeline composition ────────────────────────────────────────
	//
	pipe := new(pipeline.Container).
		MustAdd("debug", debug.New()).
		MustAdd("echo", echo.New())

	//
	// ── 5.  Listener ────────────────────────────────────────────────────
	//
	srv := server.New(cfg, pipe, sessions, logOut,
		server.WithIdentity(identity))

	if err := srv.Run(ctx); err != nil {
		logOut.Fatalf("listener: %v", err)
	}
	logOut.Infow("shutdown complete")
}
