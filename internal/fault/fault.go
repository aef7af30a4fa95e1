// internal/fault/fault.go
//
// Kinded errors for the server core.
//
// Context
// -------
// The core never panics across package boundaries and never uses sentinel
// strings for control flow.  Every failure a caller may want to branch on
// carries a Kind; everything else wraps an underlying cause that remains
// reachable through errors.Is / errors.As.
//
// Usage
// -----
//
//	return fault.New(fault.DuplicateName, "module %q already registered", name)
//	if fault.KindOf(err) == fault.AlreadyClosed { … }
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package fault

import "fmt"

// Kind classifies a failure so callers can branch without string matching.
type Kind int

const (
	// Unknown is the zero Kind; KindOf returns it for foreign errors.
	Unknown Kind = iota

	// InvalidArgument marks absent, empty, or out-of-range input.
	InvalidArgument

	// InvalidFormat marks a malformed path or URL.
	InvalidFormat

	// Unsupported marks an operation the underlying transport cannot
	// perform, such as upgrading a synthetic context.
	Unsupported

	// AlreadyClosed marks an operation against a closed context.
	AlreadyClosed

	// DuplicateName marks a module-name collision in a container.
	DuplicateName

	// UpgradeFailed marks a handshake or transport error during upgrade;
	// the underlying cause is always attached.
	UpgradeFailed
)

// String returns the lower-snake label used in logs.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidFormat:
		return "invalid_format"
	case Unsupported:
		return "unsupported"
	case AlreadyClosed:
		return "already_closed"
	case DuplicateName:
		return "duplicate_name"
	case UpgradeFailed:
		return "upgrade_failed"
	default:
		return "unknown"
	}
}

// Error is the concrete kinded error.  Zero value is invalid; construct with
// New or Wrap.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional cause
}

// Error renders "kind: msg: cause" with absent parts elided.
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Kind.String() + ": " + e.Msg
	case e.Err != nil:
		return e.Kind.String() + ": " + e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds a kinded error with a printf-style message.
func New(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.  A nil cause is
// allowed and behaves like New.
func Wrap(k Kind, cause error, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the Kind from err, walking the wrap chain.  Foreign errors
// and nil report Unknown.
func KindOf(err error) Kind {
	for err != nil {
		if fe, ok := err.(*Error); ok {
			return fe.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Unknown
}
