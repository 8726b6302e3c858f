package device

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/joeydtaylor/steeze-print/pkg/codec"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// Publisher is the byte-level publish path a relay destination needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte, headers map[string]string) error
}

type relayArg struct {
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

type relayRecord struct {
	ID          string     `json:"id"`
	Destination string     `json:"destination"`
	Format      string     `json:"format"`
	Args        []relayArg `json:"args"`
	At          time.Time  `json:"at"`
}

// Relay forwards each request as a JSON record to a topic.
type Relay struct {
	name  string
	topic string
	sig   vararg.Signature
	pub   Publisher
}

func NewRelay(name, topic string, sig vararg.Signature, pub Publisher) *Relay {
	return &Relay{name: name, topic: topic, sig: sig, pub: pub}
}

func (r *Relay) Handle(ctx context.Context, format string, args *vararg.Cursor) error {
	rec, err := readRecord(r.name, r.sig, format, args)
	if err != nil {
		return err
	}
	out := relayRecord{
		ID:          rec.ID.String(),
		Destination: rec.Destination,
		Format:      rec.Format,
		Args:        make([]relayArg, len(rec.Args)),
		At:          rec.At,
	}
	for i, a := range rec.Args {
		out.Args[i] = relayArg{Kind: a.Kind().String(), Value: relayValue(a)}
	}
	body, err := codec.JSONStrict.Marshal(out)
	if err != nil {
		return fmt.Errorf("relay %s: encode: %w", r.name, err)
	}
	hdrs := map[string]string{
		"Content-Type":  "application/json",
		"X-Destination": r.name,
		"X-Record-Id":   out.ID,
	}
	if err := r.pub.Publish(ctx, r.topic, body, hdrs); err != nil {
		return fmt.Errorf("relay %s: publish: %w", r.name, err)
	}
	return nil
}

// relayValue keeps numbers, strings and bools as JSON scalars. Everything
// else uses Value.String, so bytes are hex here as in the spool.
func relayValue(a vararg.Value) any {
	switch a.Kind() {
	case vararg.KindInt, vararg.KindUint, vararg.KindString, vararg.KindBool:
		return a.Interface()
	case vararg.KindFloat:
		if f, _ := a.AsFloat(); !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return a.String()
}
