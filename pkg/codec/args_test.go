package codec_test

import (
	"errors"
	"testing"

	"github.com/joeydtaylor/steeze-print/pkg/codec"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

func TestDecodeDispatchRequest(t *testing.T) {
	body := []byte(`{"format":"Is's the %dth day of this week.\n","args":[
		{"kind":"int","value":3},
		{"kind":"uint","value":18446744073709551615},
		{"kind":"float","value":2.5},
		{"kind":"string","value":"abc"},
		{"kind":"bool","value":true},
		{"kind":"bytes","value":"AAH/"},
		{"kind":"any","value":{"k":1}}
	]}`)

	var req codec.DispatchRequest
	if err := codec.JSONStrict.Unmarshal(body, &req); err != nil {
		t.Fatal(err)
	}
	vals, err := codec.DecodeArgs(req.Args)
	if err != nil {
		t.Fatal(err)
	}

	want := []vararg.Kind{
		vararg.KindInt, vararg.KindUint, vararg.KindFloat, vararg.KindString,
		vararg.KindBool, vararg.KindBytes, vararg.KindOpaque,
	}
	if len(vals) != len(want) {
		t.Fatalf("got %d values, want %d", len(vals), len(want))
	}
	for i, k := range want {
		if vals[i].Kind() != k {
			t.Errorf("args[%d] kind = %v, want %v", i, vals[i].Kind(), k)
		}
	}
	if n, _ := vals[0].AsInt(); n != 3 {
		t.Errorf("int = %d", n)
	}
	if u, _ := vals[1].AsUint(); u != 1<<64-1 {
		t.Errorf("uint = %d", u)
	}
	if b, _ := vals[5].AsBytes(); string(b) != "\x00\x01\xff" {
		t.Errorf("bytes = %x", b)
	}
}

func TestDecodeArgsRejects(t *testing.T) {
	tests := map[string]codec.Arg{
		"unknown kind":   {Kind: "complex", Value: []byte(`1`)},
		"missing value":  {Kind: "int"},
		"fractional int": {Kind: "int", Value: []byte(`1.5`)},
		"negative uint":  {Kind: "uint", Value: []byte(`-1`)},
		"string as int":  {Kind: "int", Value: []byte(`"3"`)},
		"number as bool": {Kind: "bool", Value: []byte(`1`)},
	}
	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.DecodeArgs([]codec.Arg{a})
			if !errors.Is(err, codec.ErrBadArg) {
				t.Errorf("err = %v, want ErrBadArg", err)
			}
		})
	}
}

func TestJSONStrictRejectsUnknownAndTrailing(t *testing.T) {
	var req codec.DispatchRequest
	if err := codec.JSONStrict.Unmarshal([]byte(`{"format":"x","extra":1}`), &req); err == nil {
		t.Error("unknown field accepted")
	}
	if err := codec.JSONStrict.Unmarshal([]byte(`{"format":"x"} {}`), &req); err == nil {
		t.Error("trailing content accepted")
	}
}
