// modules/debug/debug.go
//
// Demo module that echoes trace id, endpoints, identity, and user-agent
// data for requests to /debug.  Other paths pass through untouched.
package debug

import (
	"encoding/json"
	"net"

	"github.com/yanizio/relay/internal/pipeline"
	"github.com/yanizio/relay/internal/request"
	"github.com/yanizio/relay/internal/requestinfo"
	"github.com/yanizio/relay/internal/validate"
)

// New returns the pipeline stage.
func New() pipeline.Module { return pipeline.Func(process) }

// process writes a JSON blob with selected context fields, then closes the
// context so later stages are skipped.
func process(c *request.Context) error {
	r := c.Request()

	// Normalized match so "/debug/" and "//debug" reach the same stage; a
	// path that fails validation is simply not ours.
	path, err := validate.URLPath("path", r.URL.Path, false)
	if err != nil || path != "/debug" {
		return nil
	}

	out := map[string]any{
		"id":     c.ID(),
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
		"remote": addrString(c.RemoteAddr()),
		"local":  addrString(c.LocalAddr()),
	}
	if ident := c.Identity(); ident != nil {
		out["subject"] = ident.Subject
	}
	if v, ok := c.Item(requestinfo.ItemKey); ok {
		out["requestinfo"] = v
	}

	w := c.Response()
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	c.Close()
	return nil
}

// addrString tolerates the nil endpoints of synthetic contexts.
func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
