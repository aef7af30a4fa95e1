// internal/validate/validate.go
//
// Argument validation and normalization helpers.
//
// Context
// -------
// Stateless functions used by the upgrader and by pipeline modules to vet
// caller-supplied paths, URLs, and enum-style values before any state is
// touched.  Every helper either returns the normalized value or
// a fault-kinded error naming the offending parameter; nothing is mutated
// before the check passes, so failures never leave partial state.
//
// Structural config (listen address, DSNs) is validated separately by
// go-playground/validator in internal/config; these helpers cover the
// per-call arguments that flow through the request path.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package validate

import (
	"net/url"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/yanizio/relay/internal/fault"
)

// NotNil fails with InvalidArgument when v is nil, including a typed nil
// inside an interface value.
func NotNil(name string, v any) error {
	if v == nil {
		return fault.New(fault.InvalidArgument, "%s must not be nil", name)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return fault.New(fault.InvalidArgument, "%s must not be nil", name)
		}
	}
	return nil
}

// NotEmpty fails with InvalidArgument when s is empty.
func NotEmpty(name, s string) error {
	if s == "" {
		return fault.New(fault.InvalidArgument, "%s must not be empty", name)
	}
	return nil
}

// OneOf returns v unchanged when it equals one of the allowed constants, and
// fails with InvalidArgument otherwise.  Not meant for bit-flag enums.
func OneOf[T comparable](name string, v T, allowed ...T) (T, error) {
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	var zero T
	return zero, fault.New(fault.InvalidArgument, "%s has value %v outside its defined constants", name, v)
}

// URLPath validates and normalizes a rooted URL path.  Redundant separators
// collapse to one.  When basePath is true the result carries exactly one
// trailing slash; otherwise none.  The root path "/" is returned as-is.
func URLPath(name, value string, basePath bool) (string, error) {
	if err := NotEmpty(name, value); err != nil {
		return "", err
	}
	if value[0] != '/' {
		return "", fault.New(fault.InvalidFormat, "%s must start with a slash, got %q", name, value)
	}

	var b strings.Builder
	b.Grow(len(value))
	prevSlash := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	out := b.String()

	if out == "/" {
		return out, nil
	}
	if basePath {
		if !strings.HasSuffix(out, "/") {
			out += "/"
		}
	} else {
		out = strings.TrimSuffix(out, "/")
	}
	return out, nil
}

// LocalPath validates a filesystem path.  Wildcards '*' and '?' are rejected
// on every OS, as are control characters.  When resolve is true the path is
// canonicalized to an absolute path; any resolution failure is translated to
// InvalidArgument carrying the cause.
func LocalPath(name, value string, resolve bool) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fault.New(fault.InvalidArgument, "%s must not be empty or whitespace", name)
	}
	if strings.ContainsAny(value, `*?`) {
		return "", fault.New(fault.InvalidArgument, "%s contains a wildcard character: %q", name, value)
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 {
			return "", fault.New(fault.InvalidArgument, "%s contains a control character", name)
		}
	}

	if !resolve {
		return value, nil
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fault.Wrap(fault.InvalidArgument, err, "%s cannot be resolved", name)
	}
	return filepath.Clean(abs), nil
}

// URLKind restricts which shapes URL accepts.
type URLKind int

const (
	// KindAny accepts absolute and relative references alike.
	KindAny URLKind = iota
	// KindAbsolute requires a scheme and host.
	KindAbsolute
	// KindRelative rejects absolute references.
	KindRelative
)

// URL parses value as a URI of the requested kind.  When enforceHTTP is set
// and the result is absolute, only http and https schemes pass.
func URL(name, value string, kind URLKind, enforceHTTP bool) (*url.URL, error) {
	if err := NotEmpty(name, value); err != nil {
		return nil, err
	}
	u, err := url.Parse(value)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidFormat, err, "%s is not a valid URL", name)
	}
	switch kind {
	case KindAbsolute:
		if !u.IsAbs() {
			return nil, fault.New(fault.InvalidFormat, "%s must be an absolute URL, got %q", name, value)
		}
	case KindRelative:
		if u.IsAbs() {
			return nil, fault.New(fault.InvalidFormat, "%s must be a relative URL, got %q", name, value)
		}
	}
	if err := checkScheme(name, u, enforceHTTP); err != nil {
		return nil, err
	}
	return u, nil
}

// ResolveURL combines base and value (relative or absolute) into an absolute
// URL.  The base must itself be absolute.  Scheme enforcement applies to the
// combined result.
func ResolveURL(name, value string, base *url.URL, enforceHTTP bool) (*url.URL, error) {
	if base == nil || !base.IsAbs() {
		return nil, fault.New(fault.InvalidArgument, "%s requires an absolute base URL", name)
	}
	if err := NotEmpty(name, value); err != nil {
		return nil, err
	}
	ref, err := url.Parse(value)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidFormat, err, "%s is not a valid URL", name)
	}
	u := base.ResolveReference(ref)
	if err := checkScheme(name, u, enforceHTTP); err != nil {
		return nil, err
	}
	return u, nil
}

// checkScheme rejects absolute URLs outside http/https when enforcement is on.
func checkScheme(name string, u *url.URL, enforceHTTP bool) error {
	if !enforceHTTP || !u.IsAbs() {
		return nil
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return fault.New(fault.InvalidArgument, "%s scheme must be http or https, got %q", name, u.Scheme)
	}
	return nil
}
