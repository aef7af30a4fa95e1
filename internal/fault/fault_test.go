// internal/fault/fault_test.go
//
// Unit-tests for the kinded error type.

package fault

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf_Direct(t *testing.T) {
	err := New(DuplicateName, "module %q already registered", "auth")
	if KindOf(err) != DuplicateName {
		t.Fatalf("KindOf = %v, want DuplicateName", KindOf(err))
	}
	want := `duplicate_name: module "auth" already registered`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := Wrap(UpgradeFailed, io.ErrUnexpectedEOF, "handshake")
	outer := fmt.Errorf("serving request: %w", inner)

	if KindOf(outer) != UpgradeFailed {
		t.Fatalf("KindOf through fmt wrap = %v, want UpgradeFailed", KindOf(outer))
	}
	if !errors.Is(outer, io.ErrUnexpectedEOF) {
		t.Fatal("cause not reachable via errors.Is")
	}
}

func TestKindOf_Foreign(t *testing.T) {
	if KindOf(errors.New("plain")) != Unknown {
		t.Fatal("foreign error must report Unknown")
	}
	if KindOf(nil) != Unknown {
		t.Fatal("nil must report Unknown")
	}
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(Unsupported, nil, "no transport")
	if err.Error() != "unsupported: no transport" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
