// internal/pipeline/runner_test.go
//
// Unit-tests for the sequential pipeline driver.
//
// Context
// -------
// The driver's single guarantee to modules is that the context closes
// exactly once no matter how the run ends: normal completion, a stage
// closing early, a returned error, or a panic.

package pipeline

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/relay/internal/request"
)

// countingSink observes Finish calls from outside the request package.
type countingSink struct {
	http.ResponseWriter
	finishes int
	wrote    bool
}

func (s *countingSink) Write(b []byte) (int, error) {
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

func (s *countingSink) Written() bool { return s.wrote }

func (s *countingSink) Finish() error {
	s.finishes++
	return nil
}

func newCtx() (*request.Context, *countingSink) {
	sink := &countingSink{ResponseWriter: httptest.NewRecorder()}
	c := request.New(request.Config{
		Request:  httptest.NewRequest(http.MethodGet, "/x", nil),
		Response: sink,
	})
	return c, sink
}

func TestRun_SequentialOrder(t *testing.T) {
	var got []string
	stage := func(name string) Module {
		return Func(func(*request.Context) error {
			got = append(got, name)
			return nil
		})
	}
	ctn := new(Container).
		MustAdd("one", stage("one")).
		MustAdd("two", stage("two")).
		MustAdd("three", stage("three"))

	c, sink := newCtx()
	if err := Run(c, ctn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("order = %v", got)
	}
	if !c.Closed() || sink.finishes != 1 {
		t.Fatalf("closed = %v, finishes = %d", c.Closed(), sink.finishes)
	}
}

func TestRun_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	ctn := new(Container).
		MustAdd("bad", Func(func(*request.Context) error { return boom })).
		MustAdd("after", Func(func(*request.Context) error { ran = true; return nil }))

	c, sink := newCtx()
	if err := Run(c, ctn); !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want boom", err)
	}
	if ran {
		t.Fatal("stage after the failing one must not run")
	}
	if !c.Closed() || sink.finishes != 1 {
		t.Fatal("context must still close exactly once")
	}
}

func TestRun_ErrorWrites500WhenUnwritten(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := &countingSink{ResponseWriter: rec}
	c := request.New(request.Config{
		Request:  httptest.NewRequest(http.MethodGet, "/x", nil),
		Response: sink,
	})
	ctn := new(Container).
		MustAdd("bad", Func(func(*request.Context) error { return errors.New("boom") }))

	_ = Run(c, ctn)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRun_StopsAfterEarlyClose(t *testing.T) {
	ran := false
	ctn := new(Container).
		MustAdd("closer", Func(func(c *request.Context) error { c.Close(); return nil })).
		MustAdd("after", Func(func(*request.Context) error { ran = true; return nil }))

	c, sink := newCtx()
	if err := Run(c, ctn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ran {
		t.Fatal("stage after an early close must not run")
	}
	if sink.finishes != 1 {
		t.Fatalf("finishes = %d, want 1 despite Run's deferred Close", sink.finishes)
	}
}

func TestRun_RecoverModulePanic(t *testing.T) {
	ctn := new(Container).
		MustAdd("panics", Func(func(*request.Context) error { panic("stage blew up") }))

	c, sink := newCtx()
	err := Run(c, ctn)
	if err == nil {
		t.Fatal("panicking stage must surface as an error")
	}
	if !c.Closed() || sink.finishes != 1 {
		t.Fatal("context must still close exactly once after a panic")
	}
}
