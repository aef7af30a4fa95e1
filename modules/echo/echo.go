// modules/echo/echo.go
//
// Demo WebSocket module: upgrades /ws/echo and mirrors every message back.
//
// Context
// -------
// Shows the full upgrade contract end to end — subprotocol negotiation from
// the client's offer, a close callback registered before the long-lived
// loop, and the request context's cancellation governing the session.
package echo

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/pipeline"
	"github.com/yanizio/relay/internal/request"
	"github.com/yanizio/relay/internal/validate"
	"github.com/yanizio/relay/internal/ws"
)

// Protocol is the one subprotocol this module speaks.
const Protocol = "relay.echo.v1"

// New returns the pipeline stage.
func New() pipeline.Module { return pipeline.Func(process) }

func process(c *request.Context) error {
	r := c.Request()
	path, err := validate.URLPath("path", r.URL.Path, false)
	if err != nil || path != "/ws/echo" {
		return nil
	}

	// Accept the module protocol only when the client offered it.
	requested := websocketProtocols(r.Header.Values("Sec-Websocket-Protocol"))
	accepted := ""
	for _, p := range requested {
		if p == Protocol {
			accepted = p
			break
		}
	}

	sess, err := c.AcceptWebSocket(r.Context(), ws.AcceptOptions{
		RequestedProtocols: requested,
		AcceptedProtocol:   accepted,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	_ = c.OnClose(func(c *request.Context) error {
		zap.L().Debug("echo session torn down",
			zap.String("component", "echo"),
			zap.String("id", c.ID()))
		return nil
	})

	for {
		mt, msg, err := sess.Read()
		if err != nil {
			return nil // peer closed or cancellation fired
		}
		if err := sess.Write(mt, msg); err != nil {
			return nil
		}
	}
}

// websocketProtocols flattens the comma-separated header values.
func websocketProtocols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
