// internal/pipeline/runner.go
//
// Sequential pipeline driver.
//
// Context
// -------
// Run executes the container's stages strictly in order against one request
// context.  Dispatch stops at the first module error, when a module closes
// the context early, or after an upgrade takes the connection out of plain
// HTTP mode.  However the run ends — normal return, early exit, module
// error, or module panic — the context's Close executes exactly once.
package pipeline

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/metrics"
	"github.com/yanizio/relay/internal/request"
)

// Run drives every stage and returns the first module error, if any.  The
// deferred Close is the context layer's only guarantee to modules; surfacing
// their own failures is their responsibility.
func Run(c *request.Context, ctn *Container) error {
	defer c.Close()
	metrics.RequestsTotal.Inc()

	for _, e := range ctn.Entries() {
		if c.Closed() || c.Upgraded() {
			break
		}
		if err := process(e, c); err != nil {
			metrics.ModuleErrorsTotal.Inc()
			zap.L().Error("module failed",
				zap.String("component", "pipeline"),
				zap.String("module", e.Name),
				zap.String("id", c.ID()),
				zap.Error(err))
			if res := c.Response(); res != nil && !res.Written() {
				http.Error(res, "internal server error", http.StatusInternalServerError)
			}
			return err
		}
	}
	return nil
}

// process isolates a single stage so a panicking module cannot skip the
// deferred Close in Run's caller frame before it is recorded.
func process(e Entry, c *request.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %q panic: %v", e.Name, r)
		}
	}()
	return e.Module.Process(c)
}
