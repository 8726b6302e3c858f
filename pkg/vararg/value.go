// pkg/vararg/value.go
package vararg

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the payload carried by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindUint
	KindFloat
	KindString
	KindBool
	KindBytes
	KindOpaque
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindString:  "string",
	KindBool:    "bool",
	KindBytes:   "bytes",
	KindOpaque:  "opaque",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind is the inverse of Kind.String. "any" is accepted as an alias for opaque.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "any" {
		return KindOpaque, nil
	}
	for k, n := range kindNames {
		if k != KindInvalid && n == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("vararg: unknown kind %q", s)
}

// Value is a tagged argument. The zero Value is invalid.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	b    []byte
	x    any
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value   { return Value{kind: KindUint, u: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }
func Bytes(v []byte) Value  { return Value{kind: KindBytes, b: v} }
func Opaque(v any) Value    { return Value{kind: KindOpaque, x: v} }

func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, u: 1}
	}
	return Value{kind: KindBool}
}

// Of tags a Go value. Integers keep their signedness, every other
// unrecognised value is carried as Opaque.
func Of(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case []byte:
		return Bytes(x)
	default:
		return Opaque(v)
	}
}

// Pack tags every argument of a call, preserving order.
func Pack(vals ...any) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Of(v)
	}
	return out
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsUint() (uint64, bool)   { return v.u, v.kind == KindUint }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsBool() (bool, bool)     { return v.u == 1, v.kind == KindBool }
func (v Value) AsBytes() ([]byte, bool)  { return v.b, v.kind == KindBytes }
func (v Value) AsOpaque() (any, bool)    { return v.x, v.kind == KindOpaque }

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.u == 1
	case KindBytes:
		return v.b
	case KindOpaque:
		return v.x
	default:
		return nil
	}
}

// String renders the payload only; format directives are never applied.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.u == 1)
	case KindBytes:
		return hex.EncodeToString(v.b)
	case KindOpaque:
		return fmt.Sprint(v.x)
	default:
		return "<invalid>"
	}
}

// Signature is the ordered list of kinds a destination expects after the format string.
type Signature []Kind

// ParseSignature parses manifest spellings such as ["int", "string"].
func ParseSignature(names []string) (Signature, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sig := make(Signature, 0, len(names))
	for i, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, fmt.Errorf("vararg: signature position %d: %w", i, err)
		}
		sig = append(sig, k)
	}
	return sig, nil
}

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
