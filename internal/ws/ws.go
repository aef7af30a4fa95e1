// internal/ws/ws.go
//
// WebSocket upgrade negotiation.
//
// Context
// -------
// Accept performs the RFC 6455 handshake through gorilla/websocket and hands
// back a Session bound to the caller's cancellation context.  Upgrade state
// per request context (one attempt, never twice) is tracked by the request
// package; this package only knows how to negotiate and run a channel.
//
// Subprotocol negotiation follows the accepted-from-requested rule: the
// caller names the protocols it asked the peer for and the single protocol it
// is willing to accept; an accepted protocol outside the requested set is an
// argument error before any transport I/O happens.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yanizio/relay/internal/fault"
	"github.com/yanizio/relay/internal/validate"
)

// DefaultBufferSize is used when AcceptOptions.BufferSize is zero.
const DefaultBufferSize = 4096

// AcceptOptions parameterize a single upgrade attempt.
type AcceptOptions struct {
	// RequestedProtocols is the set of subprotocols offered to the peer.
	RequestedProtocols []string

	// AcceptedProtocol is the one subprotocol the server settles on.  Empty
	// means no subprotocol.  Must be a member of RequestedProtocols when
	// both are set.
	AcceptedProtocol string

	// BufferSize sets the read and write buffer sizes in bytes.
	BufferSize int

	// KeepAlive is the ping interval; zero disables keep-alive probing.
	KeepAlive time.Duration
}

// validate runs the synchronous checks that must pass before any I/O.
func (o AcceptOptions) validate() error {
	if o.BufferSize < 0 {
		return fault.New(fault.InvalidArgument, "bufferSize must not be negative, got %d", o.BufferSize)
	}
	if o.KeepAlive < 0 {
		return fault.New(fault.InvalidArgument, "keepAliveInterval must not be negative")
	}
	if o.AcceptedProtocol != "" && len(o.RequestedProtocols) > 0 {
		if _, err := validate.OneOf("acceptedProtocol", o.AcceptedProtocol, o.RequestedProtocols...); err != nil {
			return err
		}
	}
	return nil
}

// Accept upgrades the given response/request pair to a WebSocket channel and
// returns the live Session.  ctx governs the session lifetime: cancelling it
// closes the connection and unblocks any pending read or write.  Handshake
// failures come back as UpgradeFailed with the transport cause attached.
func Accept(ctx context.Context, w http.ResponseWriter, r *http.Request, opts AcceptOptions) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	size := opts.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}

	up := websocket.Upgrader{
		ReadBufferSize:  size,
		WriteBufferSize: size,
	}
	if opts.AcceptedProtocol != "" {
		up.Subprotocols = []string{opts.AcceptedProtocol}
	}

	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, fault.Wrap(fault.UpgradeFailed, err, "websocket handshake")
	}

	proto := conn.Subprotocol()
	if proto == "" {
		proto = opts.AcceptedProtocol
	}
	return newSession(ctx, conn, proto, opts.KeepAlive), nil
}
