package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// DispatchRequest is the body of POST /dispatch/{destination}.
type DispatchRequest struct {
	Format string `json:"format"`
	Args   []Arg  `json:"args,omitempty"`
}

// Arg is one tagged argument on the wire. Bytes travel as base64.
type Arg struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

var ErrBadArg = errors.New("codec: bad argument")

// DecodeArgs converts wire arguments into tagged values, in order.
func DecodeArgs(in []Arg) ([]vararg.Value, error) {
	out := make([]vararg.Value, 0, len(in))
	for i, a := range in {
		v, err := decodeArg(a)
		if err != nil {
			return nil, fmt.Errorf("%w: args[%d]: %v", ErrBadArg, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeArg(a Arg) (vararg.Value, error) {
	k, err := vararg.ParseKind(a.Kind)
	if err != nil {
		return vararg.Value{}, err
	}
	if len(bytes.TrimSpace(a.Value)) == 0 {
		return vararg.Value{}, errors.New("missing value")
	}

	switch k {
	case vararg.KindInt:
		n, err := number(a.Value)
		if err != nil {
			return vararg.Value{}, err
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return vararg.Value{}, fmt.Errorf("int: %w", err)
		}
		return vararg.Int(i), nil
	case vararg.KindUint:
		n, err := number(a.Value)
		if err != nil {
			return vararg.Value{}, err
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return vararg.Value{}, fmt.Errorf("uint: %w", err)
		}
		return vararg.Uint(u), nil
	case vararg.KindFloat:
		var f float64
		if err := json.Unmarshal(a.Value, &f); err != nil {
			return vararg.Value{}, err
		}
		return vararg.Float(f), nil
	case vararg.KindString:
		var s string
		if err := json.Unmarshal(a.Value, &s); err != nil {
			return vararg.Value{}, err
		}
		return vararg.String(s), nil
	case vararg.KindBool:
		var b bool
		if err := json.Unmarshal(a.Value, &b); err != nil {
			return vararg.Value{}, err
		}
		return vararg.Bool(b), nil
	case vararg.KindBytes:
		var b []byte
		if err := json.Unmarshal(a.Value, &b); err != nil {
			return vararg.Value{}, err
		}
		return vararg.Bytes(b), nil
	default:
		var x any
		dec := json.NewDecoder(bytes.NewReader(a.Value))
		dec.UseNumber()
		if err := dec.Decode(&x); err != nil {
			return vararg.Value{}, err
		}
		return vararg.Opaque(x), nil
	}
}

func number(raw json.RawMessage) (json.Number, error) {
	// json.Number also accepts quoted numerals.
	if t := bytes.TrimSpace(raw); len(t) > 0 && t[0] == '"' {
		return "", errors.New("expected a JSON number")
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", err
	}
	return n, nil
}
