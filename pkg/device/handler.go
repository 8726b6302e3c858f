// Package device defines output destinations and the registry that names them.
package device

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// Handler consumes a format string and the arguments that followed it.
// The cursor is positioned at the first argument after the format string;
// the handler decides how many values to read and of which kinds. Any
// duplicate made with args.Copy must be closed before Handle returns.
type Handler interface {
	Handle(ctx context.Context, format string, args *vararg.Cursor) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, format string, args *vararg.Cursor) error

func (f HandlerFunc) Handle(ctx context.Context, format string, args *vararg.Cursor) error {
	return f(ctx, format, args)
}

// Record is what a simulated device produces for one request.
type Record struct {
	ID          uuid.UUID
	Destination string
	Format      string
	Args        []vararg.Value
	At          time.Time
}

// Text renders the format verbatim followed by the arguments in brackets.
func (r Record) Text() string {
	if len(r.Args) == 0 {
		return r.Format
	}
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return r.Format + " [" + strings.Join(parts, " ") + "]"
}

// readRecord pulls the arguments for one request: exactly sig when a
// signature is declared, everything left otherwise.
func readRecord(dest string, sig vararg.Signature, format string, c *vararg.Cursor) (Record, error) {
	var (
		vals []vararg.Value
		err  error
	)
	if sig != nil {
		vals, err = vararg.ReadSignature(c, sig)
	} else {
		vals, err = c.Rest()
	}
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:          uuid.New(),
		Destination: dest,
		Format:      format,
		Args:        vals,
		At:          time.Now().UTC(),
	}, nil
}
