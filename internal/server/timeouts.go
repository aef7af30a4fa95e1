// internal/server/timeouts.go
//
// HTTP server construction with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//
// Config values are in seconds; zero picks the default above.  Deployments
// serving long-lived WebSocket traffic should raise write_timeout, since the
// deadline set before the upgrade still applies to the hijacked connection.

package server

import (
	"net/http"
	"time"

	"github.com/yanizio/relay/internal/config"
)

func newHTTPServer(cfg config.Server, handler http.Handler) *http.Server {
	read, write, idle := 10, 15, 60
	if cfg.ReadTimeout > 0 {
		read = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		write = cfg.WriteTimeout
	}
	if cfg.IdleTimeout > 0 {
		idle = cfg.IdleTimeout
	}

	return &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  time.Duration(read) * time.Second,
		WriteTimeout: time.Duration(write) * time.Second,
		IdleTimeout:  time.Duration(idle) * time.Second,
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}
