// pkg/core/build.go
package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joeydtaylor/steeze-print/pkg/device"
	manifest "github.com/joeydtaylor/steeze-print/pkg/manifest"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
	"github.com/joeydtaylor/steeze-print/pkg/spool/postgres"
	"go.uber.org/zap"
)

// DeviceDeps are the collaborators destinations are built from. Spool is
// required when the manifest has a printer, Publisher when it has a relay.
type DeviceDeps struct {
	Logger    *zap.Logger
	Spool     spool.Store
	Publisher device.Publisher
	Stdout    io.Writer
}

// BuildRegistry constructs one handler per manifest destination and
// freezes the result.
func BuildRegistry(cfg manifest.Config, d DeviceDeps) (*device.Registry, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}

	reg := device.NewRegistry()
	for _, dst := range cfg.Destinations {
		h, err := buildDevice(dst, d)
		if err != nil {
			return nil, fmt.Errorf("destination %q: %w", dst.Name, err)
		}
		if err := reg.Register(dst.Name, h); err != nil {
			return nil, err
		}
	}
	reg.Freeze()
	return reg, nil
}

func buildDevice(dst manifest.Destination, d DeviceDeps) (device.Handler, error) {
	sig := dst.Signature()
	switch dst.Type {
	case manifest.DeviceLCD:
		var rows, cols int
		var out io.Writer
		if l := dst.LCD; l != nil {
			rows, cols = l.Rows, l.Cols
			if l.Stdout {
				out = d.Stdout
			}
		}
		return device.NewLCD(dst.Name, rows, cols, sig, out), nil
	case manifest.DevicePrinter:
		if d.Spool == nil {
			return nil, fmt.Errorf("printer requires a spool store")
		}
		return device.NewPrinter(dst.Name, sig, d.Spool), nil
	case manifest.DeviceRelay:
		if d.Publisher == nil {
			return nil, fmt.Errorf("relay requires a publisher")
		}
		return device.NewRelay(dst.Name, dst.Relay.Topic, sig, d.Publisher), nil
	case manifest.DeviceConsole:
		return device.NewConsole(dst.Name, sig, d.Logger.Named(dst.Name)), nil
	}
	return nil, fmt.Errorf("unknown device type %q", dst.Type)
}

// OpenSpool returns the store selected by the manifest.
func OpenSpool(ctx context.Context, c manifest.SpoolConfig) (spool.Store, error) {
	switch c.Kind {
	case manifest.SpoolPostgres:
		return postgres.New(ctx, c.DSN)
	case manifest.SpoolMemory, "":
		return spool.NewMemory(), nil
	}
	return nil, fmt.Errorf("spool kind %q invalid", c.Kind)
}
