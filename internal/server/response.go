// internal/server/response.go
//
// Response sink backing a request context.
//
// Context
// -------
// The sink owns the http.ResponseWriter for the request's lifetime.  Finish
// is called exactly once by Context.Close; it flushes whatever was written
// and becomes a no-op afterwards.  A successful WebSocket upgrade hijacks
// the underlying connection, after which flushing would only log noise, so
// the transport marks the sink detached first.
package server

import "net/http"

type responseSink struct {
	http.ResponseWriter
	wrote    bool
	finished bool
	hijacked bool
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	return &responseSink{ResponseWriter: w}
}

func (s *responseSink) Write(b []byte) (int, error) {
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

func (s *responseSink) WriteHeader(code int) {
	s.wrote = true
	s.ResponseWriter.WriteHeader(code)
}

// Written reports whether any byte or status has gone out.
func (s *responseSink) Written() bool { return s.wrote }

// markHijacked detaches the sink after a protocol upgrade.
func (s *responseSink) markHijacked() { s.hijacked = true }

// Finish flushes the response.  Idempotent; a no-op once the connection has
// been hijacked.
func (s *responseSink) Finish() error {
	if s.finished || s.hijacked {
		return nil
	}
	s.finished = true
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
