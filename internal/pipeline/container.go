// internal/pipeline/container.go
//
// Ordered module registry.
//
// Context
// -------
// The Container is pure composition state: an ordered sequence of
// (name, module) pairs whose insertion order is the execution order.  It
// does not drive execution; Run in this package does.  Names are optional.
// A supplied name must be unique among live entries, while unnamed entries
// never collide with anything.
//
// Handler signature: a module receives the *request.Context and does its
// work — writing the response, registering close callbacks, or upgrading to
// WebSocket.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package pipeline

import (
	"github.com/yanizio/relay/internal/fault"
	"github.com/yanizio/relay/internal/request"
)

// Module is the single-capability pipeline-stage contract.
type Module interface {
	Process(c *request.Context) error
}

// Func adapts a plain function to the Module interface.
type Func func(c *request.Context) error

// Process calls f.
func (f Func) Process(c *request.Context) error { return f(c) }

// Entry is one registered stage.  Name may be empty.
type Entry struct {
	Name   string
	Module Module
}

// Container is an ordered, optionally-named module registry.  The zero
// value is ready to use.  Not safe for concurrent mutation; compose the
// pipeline during startup, then treat it as read-only.
type Container struct {
	entries []Entry
	names   map[string]struct{}
}

// Add appends a stage.  A nil module fails with InvalidArgument; a non-empty
// name already registered fails with DuplicateName.  On success the
// container is returned for fluent chaining.
func (c *Container) Add(name string, m Module) (*Container, error) {
	if m == nil {
		return nil, fault.New(fault.InvalidArgument, "module must not be nil")
	}
	if name != "" {
		if _, dup := c.names[name]; dup {
			return nil, fault.New(fault.DuplicateName, "module %q already registered", name)
		}
		if c.names == nil {
			c.names = make(map[string]struct{})
		}
		c.names[name] = struct{}{}
	}
	c.entries = append(c.entries, Entry{Name: name, Module: m})
	return c, nil
}

// MustAdd is Add for wiring code; it panics on error.
func (c *Container) MustAdd(name string, m Module) *Container {
	out, err := c.Add(name, m)
	if err != nil {
		panic(err)
	}
	return out
}

// Remove drops the entry with the given non-empty name.  The relative order
// and names of the remaining entries are untouched.  It reports whether an
// entry was removed.
func (c *Container) Remove(name string) bool {
	if name == "" {
		return false
	}
	for i, e := range c.entries {
		if e.Name == name {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			delete(c.names, name)
			return true
		}
	}
	return false
}

// Len reports the number of registered stages.
func (c *Container) Len() int { return len(c.entries) }

// Entries returns the ordered (name, module) sequence.  The slice is a copy;
// the modules are shared.
func (c *Container) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
