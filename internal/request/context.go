// internal/request/context.go
//
// Per-request context and its close lifecycle.
//
// Context
// -------
// Every inbound connection is wrapped in exactly one *request.Context before
// the module pipeline runs.  It bundles the immutable request view, the owned
// response sink, the optional authenticated identity, a lazy session binding,
// an items bag for inter-module state, and the ordered teardown list.
//
// Concurrency
// -----------
// One logical flow owns a Context at a time: the pipeline drives modules
// strictly sequentially, and the same flow performs both OnClose and Close.
// The callback list and the items bag are therefore deliberately unguarded.
// If concurrent module execution is ever introduced, both need a mutex.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package request

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/fault"
	"github.com/yanizio/relay/internal/metrics"
	"github.com/yanizio/relay/internal/session"
	"github.com/yanizio/relay/internal/ws"
)

// Response is the mutable sink the context owns for the request's lifetime.
// Finish flushes and releases the sink; the context calls it exactly once,
// from Close, before any teardown callback runs.
type Response interface {
	http.ResponseWriter

	// Written reports whether a status or body byte has gone out, so the
	// pipeline can decide if an error page is still possible.
	Written() bool

	// Finish flushes and releases the sink; idempotent.
	Finish() error
}

// Transport answers whether the underlying connection can leave plain HTTP
// mode and, if so, performs the handshake.  Synthetic contexts built for
// tests simply carry a nil Transport.
type Transport interface {
	CanUpgrade() bool
	Upgrade(ctx context.Context, opts ws.AcceptOptions) (*ws.Session, error)
}

// Identity is the authenticated principal attached at construction.
type Identity struct {
	Subject string
	Roles   []string
}

// CloseFunc is a teardown action.  The context is passed explicitly at
// invocation time; callbacks must not assume it is still open.
type CloseFunc func(*Context) error

// upgrade state machine: http → negotiating → open | failed.
type upgradeState int

const (
	upgradeHTTP upgradeState = iota
	upgradeNegotiating
	upgradeOpen
	upgradeFailed
)

// Context is created once per request by the listener and handed to every
// pipeline module in turn.
type Context struct {
	id     string
	local  net.Addr
	remote net.Addr

	req *http.Request
	res Response

	identity *Identity

	sessions session.Store
	sess     *session.Session

	items map[string]any

	closeCbs []CloseFunc
	closed   bool

	upgrade   upgradeState
	transport Transport
}

// Config carries the construction contract the listener fulfils.  ID is
// optional; a fresh UUID is minted when empty.  Transport and Sessions may be
// nil, which disables upgrading and session binding respectively.
type Config struct {
	ID        string
	Local     net.Addr
	Remote    net.Addr
	Request   *http.Request
	Response  Response
	Identity  *Identity
	Sessions  session.Store
	Transport Transport
}

// New builds an open Context.
func New(cfg Config) *Context {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	metrics.ContextsActive.Inc()
	return &Context{
		id:        id,
		local:     cfg.Local,
		remote:    cfg.Remote,
		req:       cfg.Request,
		res:       cfg.Response,
		identity:  cfg.Identity,
		sessions:  cfg.Sessions,
		transport: cfg.Transport,
		items:     make(map[string]any),
	}
}

// ID returns the opaque trace identifier.
func (c *Context) ID() string { return c.id }

// LocalAddr returns the server-side endpoint, possibly nil for synthetic
// contexts.
func (c *Context) LocalAddr() net.Addr { return c.local }

// RemoteAddr returns the peer endpoint, possibly nil for synthetic contexts.
func (c *Context) RemoteAddr() net.Addr { return c.remote }

// Request returns the immutable inbound view.  Modules must treat it as
// read-only.
func (c *Context) Request() *http.Request { return c.req }

// Response returns the owned response sink.
func (c *Context) Response() Response { return c.res }

// Identity returns the authenticated principal or nil.
func (c *Context) Identity() *Identity { return c.identity }

// Item reads a value from the inter-module bag.
func (c *Context) Item(key string) (any, bool) {
	v, ok := c.items[key]
	return v, ok
}

// SetItem stores a value in the inter-module bag.
func (c *Context) SetItem(key string, v any) { c.items[key] = v }

// Closed reports whether Close has run.  The transition is monotonic.
func (c *Context) Closed() bool { return c.closed }

// Upgraded reports whether this context left plain HTTP mode.  The pipeline
// runner stops dispatching modules once this is true.
func (c *Context) Upgraded() bool { return c.upgrade == upgradeOpen }

// Session lazily binds the session proxy for this request.  The id is
// derived from the request cookie; a missing cookie yields a fresh unsaved
// session.  The store owns session lifetime, the context only holds the
// reference.
func (c *Context) Session(ctx context.Context) (*session.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}
	if c.sessions == nil {
		return nil, fault.New(fault.Unsupported, "context has no session store")
	}

	if id, ok := session.RequestID(c.req); ok {
		s, err := c.sessions.Find(ctx, id)
		switch {
		case err == nil:
			c.sess = s
			return s, nil
		case err != session.ErrNotFound:
			return nil, err
		}
	}
	c.sess = session.New()
	return c.sess, nil
}

// OnClose registers a teardown action.  Once the context is closed no
// further callback may be appended.
func (c *Context) OnClose(fn CloseFunc) error {
	if c.closed {
		return fault.New(fault.AlreadyClosed, "context %s is closed", c.id)
	}
	if fn == nil {
		return fault.New(fault.InvalidArgument, "close callback must not be nil")
	}
	c.closeCbs = append(c.closeCbs, fn)
	return nil
}

// Close finishes the response sink and runs every registered callback in
// reverse registration order.  Each callback is isolated: a failure (or
// panic) is logged and counted, and iteration continues.  The second and
// later calls are no-ops.  Close never returns an error by contract.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	metrics.ContextsActive.Dec()

	// The sink is finished unconditionally, before and regardless of
	// callback outcomes.
	if c.res != nil {
		if err := c.res.Finish(); err != nil {
			zap.L().Warn("response finish failed",
				zap.String("component", "request"),
				zap.String("id", c.id),
				zap.Error(err))
		}
	}

	for i := len(c.closeCbs) - 1; i >= 0; i-- {
		if err := runCallback(c.closeCbs[i], c); err != nil {
			metrics.CloseCallbackFailures.Inc()
			zap.L().Warn("close callback failed",
				zap.String("component", "request"),
				zap.String("id", c.id),
				zap.Int("index", i),
				zap.Error(err))
		}
	}
	c.closeCbs = nil
}

// runCallback converts a panic inside a callback into an error so teardown
// completion stays unconditional.
func runCallback(fn CloseFunc, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.New(fault.Unknown, "close callback panic: %v", r)
		}
	}()
	return fn(c)
}

// AcceptWebSocket transitions the context from plain HTTP into a duplex
// message channel.  Exactly one attempt is permitted: a second call on an
// upgraded or failed context never silently succeeds.  A context built
// without transport capability fails with Unsupported before any I/O.
func (c *Context) AcceptWebSocket(ctx context.Context, opts ws.AcceptOptions) (*ws.Session, error) {
	if c.closed {
		return nil, fault.New(fault.AlreadyClosed, "context %s is closed", c.id)
	}
	switch c.upgrade {
	case upgradeOpen, upgradeNegotiating:
		return nil, fault.New(fault.AlreadyClosed, "context %s is already upgraded", c.id)
	case upgradeFailed:
		return nil, fault.New(fault.Unsupported, "context %s upgrade already failed", c.id)
	}
	if c.transport == nil || !c.transport.CanUpgrade() {
		return nil, fault.New(fault.Unsupported, "transport does not support upgrade")
	}

	c.upgrade = upgradeNegotiating
	sess, err := c.transport.Upgrade(ctx, opts)
	if err != nil {
		c.upgrade = upgradeFailed
		metrics.UpgradeFailures.Inc()
		return nil, err
	}
	c.upgrade = upgradeOpen
	metrics.UpgradesTotal.Inc()
	return sess, nil
}
