package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// Validate normalises the config in place and rejects anything the
// registry builder could not construct.
func (c *Config) Validate() error {
	if len(c.Destinations) == 0 {
		return errors.New("no destinations defined")
	}

	seen := make(map[string]int, len(c.Destinations))
	for i := range c.Destinations {
		d := &c.Destinations[i]
		if err := d.normalize(); err != nil {
			return fmt.Errorf("destination %d: %w", i, err)
		}
		if prev, dup := seen[d.Name]; dup {
			return fmt.Errorf("destination %d: name %q already used by destination %d", i, d.Name, prev)
		}
		seen[d.Name] = i
		if err := d.validate(); err != nil {
			return fmt.Errorf("destination %d (%s): %w", i, d.Name, err)
		}
	}

	return c.Spool.validate()
}

func (d *Destination) normalize() error {
	// Names stay case-sensitive; only surrounding space is dropped.
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return errors.New("name is required")
	}
	d.Type = DeviceType(strings.ToLower(strings.TrimSpace(string(d.Type))))
	return nil
}

func (d *Destination) validate() error {
	if _, err := vararg.ParseSignature(d.Args); err != nil {
		return fmt.Errorf("args: %w", err)
	}
	if d.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	switch d.Type {
	case DeviceLCD:
		if l := d.LCD; l != nil && (l.Rows < 0 || l.Cols < 0) {
			return errors.New("lcd.rows and lcd.cols must be >= 0")
		}
	case DeviceRelay:
		if d.Relay == nil || strings.TrimSpace(d.Relay.Topic) == "" {
			return errors.New("relay.topic required for relay")
		}
	case DevicePrinter, DeviceConsole:
	default:
		return fmt.Errorf("unknown device type %q", d.Type)
	}
	return nil
}

func (s *SpoolConfig) validate() error {
	s.Kind = SpoolKind(strings.ToLower(strings.TrimSpace(string(s.Kind))))
	switch s.Kind {
	case "":
		s.Kind = SpoolMemory
	case SpoolMemory:
	case SpoolPostgres:
		if strings.TrimSpace(s.DSN) == "" {
			return errors.New("spool.dsn required for postgres")
		}
	default:
		return fmt.Errorf("spool.kind %q invalid", s.Kind)
	}
	return nil
}

// Signature returns the parsed args; Validate has already checked them.
func (d Destination) Signature() vararg.Signature {
	sig, _ := vararg.ParseSignature(d.Args)
	return sig
}

// Has reports whether any destination uses the given device type.
func (c Config) Has(t DeviceType) bool {
	for _, d := range c.Destinations {
		if d.Type == t {
			return true
		}
	}
	return false
}
