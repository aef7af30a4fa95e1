// internal/validate/validate_test.go
//
// Unit-tests for argument validation helpers.
//
// Context
// -------
// Covers the normalization rules routing modules rely on: separator
// collapsing, trailing-slash policy per base-path flag, wildcard rejection,
// and scheme enforcement on combined URLs.

package validate

import (
	"net/url"
	"testing"

	"github.com/yanizio/relay/internal/fault"
)

func TestURLPath_CollapseAndBaseSlash(t *testing.T) {
	got, err := URLPath("p", "/a//b", true)
	if err != nil {
		t.Fatalf("URLPath: %v", err)
	}
	if got != "/a/b/" {
		t.Fatalf("got %q, want %q", got, "/a/b/")
	}
}

func TestURLPath_TrimTrailing(t *testing.T) {
	got, err := URLPath("p", "/a/b/", false)
	if err != nil {
		t.Fatalf("URLPath: %v", err)
	}
	if got != "/a/b" {
		t.Fatalf("got %q, want %q", got, "/a/b")
	}
}

func TestURLPath_Root(t *testing.T) {
	for _, base := range []bool{true, false} {
		got, err := URLPath("p", "///", base)
		if err != nil {
			t.Fatalf("URLPath(base=%v): %v", base, err)
		}
		if got != "/" {
			t.Fatalf("base=%v: got %q, want /", base, got)
		}
	}
}

func TestURLPath_Rejections(t *testing.T) {
	if _, err := URLPath("p", "", true); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("empty: kind = %v, want InvalidArgument", fault.KindOf(err))
	}
	if _, err := URLPath("p", "a/b", true); fault.KindOf(err) != fault.InvalidFormat {
		t.Fatalf("unrooted: kind = %v, want InvalidFormat", fault.KindOf(err))
	}
}

func TestLocalPath_Wildcard(t *testing.T) {
	if _, err := LocalPath("p", "a*b", false); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("wildcard: kind = %v, want InvalidArgument", fault.KindOf(err))
	}
	if _, err := LocalPath("p", "what?", false); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("question mark: kind = %v, want InvalidArgument", fault.KindOf(err))
	}
}

func TestLocalPath_WhitespaceOnly(t *testing.T) {
	if _, err := LocalPath("p", "   ", false); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatal("whitespace-only path must fail")
	}
}

func TestLocalPath_Resolve(t *testing.T) {
	got, err := LocalPath("p", "a/b/../c", true)
	if err != nil {
		t.Fatalf("LocalPath: %v", err)
	}
	if got == "" || got[0] != '/' {
		t.Fatalf("expected absolute path, got %q", got)
	}
}

func TestOneOf(t *testing.T) {
	got, err := OneOf("mode", "alias", "absolute", "alias", "both")
	if err != nil || got != "alias" {
		t.Fatalf("OneOf = (%q, %v)", got, err)
	}
	if _, err := OneOf("mode", "bogus", "absolute", "alias"); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("kind = %v, want InvalidArgument", fault.KindOf(err))
	}
}

func TestURL_Kinds(t *testing.T) {
	if _, err := URL("p", "rel/x", KindAbsolute, false); fault.KindOf(err) != fault.InvalidFormat {
		t.Fatalf("relative as absolute: kind = %v", fault.KindOf(err))
	}
	if _, err := URL("p", "https://h/x", KindRelative, false); fault.KindOf(err) != fault.InvalidFormat {
		t.Fatalf("absolute as relative: kind = %v", fault.KindOf(err))
	}
	u, err := URL("p", "https://h/x", KindAbsolute, true)
	if err != nil || u.Host != "h" {
		t.Fatalf("URL = (%v, %v)", u, err)
	}
}

func TestURL_SchemeEnforcement(t *testing.T) {
	if _, err := URL("p", "ftp://h/x", KindAbsolute, true); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("ftp scheme: kind = %v, want InvalidArgument", fault.KindOf(err))
	}
	// Relative references carry no scheme; enforcement must not fire.
	if _, err := URL("p", "rel/x", KindAny, true); err != nil {
		t.Fatalf("relative with enforcement: %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://h/y/")
	u, err := ResolveURL("p", "rel/x", base, true)
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if u.String() != "https://h/y/rel/x" {
		t.Fatalf("combined = %q", u.String())
	}

	ftp, _ := url.Parse("ftp://h/y/")
	if _, err := ResolveURL("p", "rel/x", ftp, true); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatalf("ftp base: kind = %v, want InvalidArgument", fault.KindOf(err))
	}

	rel, _ := url.Parse("/y/")
	if _, err := ResolveURL("p", "rel/x", rel, false); fault.KindOf(err) != fault.InvalidArgument {
		t.Fatal("relative base must fail")
	}
}
