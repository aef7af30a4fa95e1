// internal/requestinfo/requestinfo.go
//
// Per-request metadata collection (user-agent fingerprint, IP + geolocation,
// URL, and timestamp).  The listener calls Collect once per request and
// seeds the result into the context items bag under ItemKey, so modules can
// read UA and Geo attributes without reparsing.
//
// These structs are inert: no database handles, no large buffers, safe to
// log or JSON-encode.
//
// Dependencies
// • github.com/avct/uasurfer        (via internal/ua)
// • github.com/oschwald/geoip2-golang (MaxMind lookup)
package requestinfo

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/yanizio/relay/internal/ua"
)

// ItemKey is the context-items key Collect results are stored under.
const ItemKey = "requestinfo"

// Geo holds IP-based geolocation hints.  Best-effort; fields may be empty
// when the DB has no match or lookups are disabled.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", ...
	City       string // "Chicago", "Paris", ...
}

// Info is the per-request metadata bundle.
type Info struct {
	UA        ua.Info
	Geo       Geo
	URL       *url.URL // pointer copy, safe to dereference read-only
	Timestamp time.Time
}

// geoReader is a singleton MaxMind handle.  It is safe for concurrent
// reads, which is all we ever perform.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database at startup.  Lookups stay
// disabled when it is never called.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

// Collect parses the UA header, resolves the client IP, and performs the
// optional geo lookup.
func Collect(r *http.Request) *Info {
	ip := clientIP(r)
	return &Info{
		UA:        ua.Parse(r.UserAgent()),
		Geo:       lookupGeo(ip),
		URL:       r.URL,
		Timestamp: time.Now().UTC(),
	}
}

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
