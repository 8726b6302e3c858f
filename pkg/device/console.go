package device

import (
	"context"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
	"go.uber.org/zap"
)

// Console writes each request to a zap logger.
type Console struct {
	name string
	sig  vararg.Signature
	log  *zap.Logger
}

func NewConsole(name string, sig vararg.Signature, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{name: name, sig: sig, log: log}
}

func (c *Console) Handle(_ context.Context, format string, args *vararg.Cursor) error {
	rec, err := readRecord(c.name, c.sig, format, args)
	if err != nil {
		return err
	}
	vals := make([]string, len(rec.Args))
	for i, a := range rec.Args {
		vals[i] = a.String()
	}
	c.log.Info("",
		zap.String("destination", c.name),
		zap.String("recordId", rec.ID.String()),
		zap.String("format", rec.Format),
		zap.Strings("args", vals),
		zap.String("text", rec.Text()),
	)
	return nil
}
