// internal/server/transport.go
//
// HTTP-backed upgrade transport.
//
// Context
// -------
// The listener hands each request context a transport bound to the live
// ResponseWriter/Request pair.  CanUpgrade answers without I/O (the writer
// must support hijacking); Upgrade fills unset options from the configured
// WebSocket defaults and delegates the handshake to internal/ws.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/fault"
	"github.com/yanizio/relay/internal/ws"
)

type wsTransport struct {
	w        http.ResponseWriter
	r        *http.Request
	sink     *responseSink
	defaults config.WebSocket
}

func (t *wsTransport) CanUpgrade() bool {
	_, ok := t.w.(http.Hijacker)
	return ok
}

func (t *wsTransport) Upgrade(ctx context.Context, opts ws.AcceptOptions) (*ws.Session, error) {
	sess, err := ws.Accept(ctx, t.w, t.r, t.fillDefaults(opts))
	if err != nil {
		// A rejected handshake writes its own 4xx to the raw writer, so the
		// sink must not allow a second status line.  Option validation fails
		// before any I/O and leaves the response untouched.
		if fault.KindOf(err) == fault.UpgradeFailed {
			t.sink.wrote = true
		}
		return nil, err
	}
	t.sink.markHijacked()
	return sess, nil
}

// fillDefaults completes unset options from the configured WebSocket
// section.  The configured protocol list doubles as the allowed set: a
// module that names an accepted protocol without a requested list is held to
// it by the upgrader's validation.
func (t *wsTransport) fillDefaults(opts ws.AcceptOptions) ws.AcceptOptions {
	if opts.BufferSize == 0 {
		opts.BufferSize = t.defaults.BufferSize
	}
	if opts.KeepAlive == 0 && t.defaults.KeepAlive > 0 {
		opts.KeepAlive = time.Duration(t.defaults.KeepAlive) * time.Second
	}
	if len(opts.RequestedProtocols) == 0 {
		opts.RequestedProtocols = t.defaults.Protocols
	}
	return opts
}
