package vararg_test

import (
	"testing"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

type point struct{ X, Y int }

func TestOfTagsGoValues(t *testing.T) {
	tests := []struct {
		in   any
		kind vararg.Kind
		text string
	}{
		{3, vararg.KindInt, "3"},
		{int8(-4), vararg.KindInt, "-4"},
		{uint8(3), vararg.KindUint, "3"},
		{uint64(1 << 40), vararg.KindUint, "1099511627776"},
		{float32(0.5), vararg.KindFloat, "0.5"},
		{"Day", vararg.KindString, "Day"},
		{false, vararg.KindBool, "false"},
		{[]byte("hi"), vararg.KindBytes, "6869"},
		{point{1, 2}, vararg.KindOpaque, "{1 2}"},
		{vararg.Int(9), vararg.KindInt, "9"},
	}
	for _, tt := range tests {
		v := vararg.Of(tt.in)
		if v.Kind() != tt.kind {
			t.Errorf("Of(%#v).Kind() = %s, want %s", tt.in, v.Kind(), tt.kind)
		}
		if v.String() != tt.text {
			t.Errorf("Of(%#v).String() = %q, want %q", tt.in, v.String(), tt.text)
		}
	}
}

func TestAccessorsCheckKind(t *testing.T) {
	v := vararg.Int(5)
	if n, ok := v.AsInt(); !ok || n != 5 {
		t.Errorf("AsInt() = %d, %v", n, ok)
	}
	if _, ok := v.AsString(); ok {
		t.Error("AsString() on int reported ok")
	}
	if b, ok := vararg.Bool(true).AsBool(); !ok || !b {
		t.Errorf("AsBool() = %v, %v", b, ok)
	}
	var zero vararg.Value
	if zero.IsValid() || zero.Interface() != nil {
		t.Error("zero Value should be invalid")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"int", "uint", "float", "string", "bool", "bytes", "opaque"} {
		k, err := vararg.ParseKind(s)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", s, err)
		}
		if k.String() != s {
			t.Errorf("round trip %q -> %q", s, k.String())
		}
	}
	if k, err := vararg.ParseKind(" ANY "); err != nil || k != vararg.KindOpaque {
		t.Errorf("ParseKind(any) = %s, %v", k, err)
	}
	if _, err := vararg.ParseKind("invalid"); err == nil {
		t.Error("expected error for invalid")
	}
	if _, err := vararg.ParseSignature([]string{"int", "char"}); err == nil {
		t.Error("expected error for unknown kind in signature")
	}
}

func TestAsOpaque(t *testing.T) {
	ch := make(chan int)
	v := vararg.Of(ch)
	if v.Kind() != vararg.KindOpaque {
		t.Fatalf("kind = %s", v.Kind())
	}
	if x, ok := v.AsOpaque(); !ok || x.(chan int) != ch {
		t.Errorf("AsOpaque() = %v, %v", x, ok)
	}
	if _, ok := vararg.Int(1).AsOpaque(); ok {
		t.Error("AsOpaque() accepted an int")
	}
}
