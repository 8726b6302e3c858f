package device

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/steeze-print/pkg/spool"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// Printer queues one spool job per request.
type Printer struct {
	name  string
	sig   vararg.Signature
	store spool.Store
}

func NewPrinter(name string, sig vararg.Signature, store spool.Store) *Printer {
	return &Printer{name: name, sig: sig, store: store}
}

func (p *Printer) Handle(ctx context.Context, format string, args *vararg.Cursor) error {
	rec, err := readRecord(p.name, p.sig, format, args)
	if err != nil {
		return err
	}
	j := spool.Job{
		ID:          rec.ID,
		Destination: p.name,
		Format:      rec.Format,
		Args:        make([]spool.Arg, len(rec.Args)),
		CreatedAt:   rec.At,
	}
	for i, a := range rec.Args {
		j.Args[i] = spool.Arg{Kind: a.Kind().String(), Value: a.String()}
	}
	if err := p.store.Enqueue(ctx, j); err != nil {
		return fmt.Errorf("printer %s: %w", p.name, err)
	}
	return nil
}

// Spool exposes the backing store for read-only listing.
func (p *Printer) Spool() spool.Store { return p.store }
