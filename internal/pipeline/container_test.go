// internal/pipeline/container_test.go
//
// Unit-tests for the ordered module registry.

package pipeline

import (
	"testing"

	"github.com/yanizio/relay/internal/fault"
	"github.com/yanizio/relay/internal/request"
)

func noop() Module { return Func(func(*request.Context) error { return nil }) }

func TestAdd_NilModule(t *testing.T) {
	var c Container
	_, err := c.Add("m", nil)
	if fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("kind = %v, want InvalidArgument", fault.KindOf(err))
	}
}

func TestAdd_DuplicateName(t *testing.T) {
	var c Container
	if _, err := c.Add("m", noop()); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := c.Add("m", noop())
	if fault.KindOf(err) != fault.DuplicateName {
		t.Fatalf("kind = %v, want DuplicateName", fault.KindOf(err))
	}
}

func TestAdd_UnnamedNeverCollides(t *testing.T) {
	var c Container
	if _, err := c.Add("", noop()); err != nil {
		t.Fatalf("first unnamed: %v", err)
	}
	if _, err := c.Add("", noop()); err != nil {
		t.Fatalf("second unnamed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestEntries_InsertionOrder(t *testing.T) {
	c := new(Container).
		MustAdd("a", noop()).
		MustAdd("", noop()).
		MustAdd("b", noop())

	got := c.Entries()
	names := []string{"a", "", "b"}
	for i, e := range got {
		if e.Name != names[i] {
			t.Fatalf("entry %d name = %q, want %q", i, e.Name, names[i])
		}
	}
}

func TestRemove_PreservesRest(t *testing.T) {
	c := new(Container).
		MustAdd("a", noop()).
		MustAdd("b", noop()).
		MustAdd("c", noop())

	if !c.Remove("b") {
		t.Fatal("Remove(b) reported false")
	}
	if c.Remove("b") {
		t.Fatal("second Remove(b) must report false")
	}

	got := c.Entries()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("remaining = %v", got)
	}

	// The freed name is registrable again.
	if _, err := c.Add("b", noop()); err != nil {
		t.Fatalf("re-add after remove: %v", err)
	}
}
