// manifest/manifest.go
package manifest

/* ===========================
   Types
   =========================== */

type DeviceType string

const (
	DeviceLCD     DeviceType = "lcd"
	DevicePrinter DeviceType = "printer"
	DeviceRelay   DeviceType = "relay"
	DeviceConsole DeviceType = "console"
)

type SpoolKind string

const (
	SpoolMemory   SpoolKind = "memory"
	SpoolPostgres SpoolKind = "postgres"
)

/* ===========================
   Top-level config
   =========================== */

type Config struct {
	Destinations []Destination `toml:"destination"`
	Spool        SpoolConfig   `toml:"spool"`
}

/* ===========================
   Destinations
   =========================== */

type Destination struct {
	Name string     `toml:"name"` // exact-match key, e.g. "LCD", "PRN"
	Type DeviceType `toml:"type"`
	Args []string   `toml:"args"` // optional signature, e.g. ["int", "string"]

	Guard  Guard  `toml:"guard"`
	Policy Policy `toml:"policy"`

	LCD   *LCDSpec   `toml:"lcd,omitempty"`
	Relay *RelaySpec `toml:"relay,omitempty"`
}

// Guard restricts who may dispatch to a destination over HTTP.
type Guard struct {
	Roles       []string `toml:"roles"`
	Users       []string `toml:"users"`
	RequireAuth bool     `toml:"require_auth"`
}

func (g Guard) Open() bool { return !g.RequireAuth && len(g.Users) == 0 && len(g.Roles) == 0 }

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"` // bounds the HTTP request; 0 = none
}

type LCDSpec struct {
	Rows   int  `toml:"rows"`   // default 2
	Cols   int  `toml:"cols"`   // default 16
	Stdout bool `toml:"stdout"` // mirror the screen to stdout
}

type RelaySpec struct {
	Topic string `toml:"topic"`
}

/* ===========================
   Printer spool
   =========================== */

type SpoolConfig struct {
	Kind SpoolKind `toml:"kind"` // "memory" (default) | "postgres"
	// DSN for postgres; SPOOL_DATABASE_URL overrides it.
	DSN string `toml:"dsn"`
}
