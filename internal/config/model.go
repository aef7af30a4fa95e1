// internal/config/model.go
//
// Typed configuration model for Relay.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/relay.yaml`                       – primary static file,
//   • `RELAY_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// never stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Server section
//

// Server holds listener tunables.  Timeouts are in seconds so plain YAML
// integers work without a duration decode hook.
type Server struct {
	ListenAddr   string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS   bool   `koanf:"force_https"`
	ReadTimeout  int    `koanf:"read_timeout"`
	WriteTimeout int    `koanf:"write_timeout"`
	IdleTimeout  int    `koanf:"idle_timeout"`
}

//
// WebSocket section
//

// WebSocket holds the defaults the upgrader applies when a module does not
// override them per call.
type WebSocket struct {
	BufferSize int      `koanf:"buffer_size" validate:"gte=0"`
	KeepAlive  int      `koanf:"keep_alive"  validate:"gte=0"` // seconds; 0 disables pings
	Protocols  []string `koanf:"protocols"`
}

//
// Session section
//

// Session selects and tunes the session store.  The *DSN template* is kept
// in YAML so operators can tweak host, port, or flags without touching
// Vault; the secret portion may be a `vault:` reference resolved at load.
type Session struct {
	Backend    string `koanf:"backend" validate:"required,oneof=memory mysql"`
	DSN        string `koanf:"dsn"`
	TTLMinutes int    `koanf:"ttl_minutes" validate:"gt=0"`
	MaxEntries int    `koanf:"max_entries" validate:"gt=0"`
}

//
// Geo section
//

// Geo points at the optional GeoLite2 database used for request enrichment.
// An empty path disables lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or RELAY_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // RELAY_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	Server    Server    `koanf:"server"`
	WebSocket WebSocket `koanf:"websocket"`
	Session   Session   `koanf:"session"`
	Geo       Geo       `koanf:"geo"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
