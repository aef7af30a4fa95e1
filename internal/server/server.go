// internal/server/server.go
//
// The listener: accepts connections, wraps each request in a context, and
// drives the module pipeline.
//
// Request life-cycle
// ------------------
//
//  1. chi routes /healthz and /metrics before anything else; every other
//     path falls through to the pipeline handler.
//
//  2. Per request the handler mints a *request.Context: UUID trace id,
//     local/remote endpoints, response sink, optional identity (identity
//     hook), session-store reference, and an upgrade-capable transport.
//
//  3. Request-info enrichment (UA parse + best-effort geo) is seeded into
//     the items bag before the first module runs.
//
//  4. pipeline.Run executes the stages in order; Close fires exactly once
//     whatever the outcome.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/middleware"
	"github.com/yanizio/relay/internal/pipeline"
	"github.com/yanizio/relay/internal/request"
	"github.com/yanizio/relay/internal/requestinfo"
	"github.com/yanizio/relay/internal/session"
)

// IdentityFunc derives the optional principal attached at context
// construction.
type IdentityFunc func(*http.Request) *request.Identity

// Option tweaks Server construction.
type Option func(*Server)

// WithIdentity installs the identity hook.
func WithIdentity(fn IdentityFunc) Option {
	return func(s *Server) { s.identity = fn }
}

// Server owns the http.Server and the pipeline it feeds.
type Server struct {
	cfg      *config.Config
	pipe     *pipeline.Container
	sessions session.Store
	identity IdentityFunc
	log      *zap.SugaredLogger
	http     *http.Server
}

// New assembles the router, middleware, and hardened http.Server.  The
// pipeline container must be fully composed before the first request; its
// entries are copied into a server-owned container, so the caller's remains
// untouched and may seed further servers.
func New(cfg *config.Config, pipe *pipeline.Container, sessions session.Store,
	log *zap.SugaredLogger, opts ...Option) *Server {

	s := &Server{cfg: cfg, sessions: sessions, log: log}
	for _, o := range opts {
		o(s)
	}

	// Copy stages, then append the terminal one: requests no module claimed
	// get a 404 before the sink is finished.
	s.pipe = new(pipeline.Container)
	for _, e := range pipe.Entries() {
		s.pipe.MustAdd(e.Name, e.Module)
	}
	s.pipe.MustAdd("", pipeline.Func(notFound))

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", s.handler())

	var h http.Handler = middleware.Security(r)
	if cfg.Server.ForceHTTPS {
		h = middleware.ForceHTTPS(h)
	}

	s.http = newHTTPServer(cfg.Server, h)
	return s
}

// Handler exposes the pipeline handler for embedding and tests; it skips
// the /healthz and /metrics routes.
func (s *Server) Handler() http.Handler { return s.handler() }

// handler builds one request context per call and runs the pipeline.
func (s *Server) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sink := newResponseSink(w)

		var ident *request.Identity
		if s.identity != nil {
			ident = s.identity(r)
		}

		c := request.New(request.Config{
			ID:       uuid.NewString(),
			Local:    localAddr(r),
			Remote:   remoteAddr(r),
			Request:  r,
			Response: sink,
			Identity: ident,
			Sessions: s.sessions,
			Transport: &wsTransport{
				w: w, r: r, sink: sink,
				defaults: s.cfg.WebSocket,
			},
		})
		c.SetItem(requestinfo.ItemKey, requestinfo.Collect(r))

		// Module errors are logged by the runner; the connection-level
		// response (500 if nothing was written) is already handled there.
		_ = pipeline.Run(c, s.pipe)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Infow("listener online", "addr", s.http.Addr)
		err := s.http.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Infow("listener draining")
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// notFound answers for paths that fell through every module.
func notFound(c *request.Context) error {
	if !c.Response().Written() {
		http.NotFound(c.Response(), c.Request())
	}
	return nil
}

// -----------------------------------------------------------------------------
// endpoint helpers
// -----------------------------------------------------------------------------

// localAddr pulls the accepting socket's address from the request context.
func localAddr(r *http.Request) net.Addr {
	if a, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		return a
	}
	return nil
}

// remoteAddr parses "ip:port" without touching the resolver.
func remoteAddr(r *http.Request) net.Addr {
	host, portStr, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return nil
	}
	port, _ := strconv.Atoi(portStr)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: port}
}
