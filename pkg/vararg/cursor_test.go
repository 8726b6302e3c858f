package vararg_test

import (
	"errors"
	"testing"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

func TestCursorReadsInCallerOrder(t *testing.T) {
	f := vararg.NewFrame(vararg.Pack(3, "three", uint8(7), 2.5, true, []byte{0xab}))
	c := f.Start()
	defer c.Close()

	if n, err := c.Int(); err != nil || n != 3 {
		t.Fatalf("Int() = %d, %v", n, err)
	}
	if s, err := c.Text(); err != nil || s != "three" {
		t.Fatalf("Text() = %q, %v", s, err)
	}
	if u, err := c.Uint(); err != nil || u != 7 {
		t.Fatalf("Uint() = %d, %v", u, err)
	}
	if x, err := c.Float(); err != nil || x != 2.5 {
		t.Fatalf("Float() = %v, %v", x, err)
	}
	if b, err := c.Bool(); err != nil || !b {
		t.Fatalf("Bool() = %v, %v", b, err)
	}
	if b, err := c.Bytes(); err != nil || len(b) != 1 || b[0] != 0xab {
		t.Fatalf("Bytes() = %v, %v", b, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("expected no remaining arguments, got %d", c.Remaining())
	}
}

func TestCursorKindMismatchDoesNotAdvance(t *testing.T) {
	c := vararg.NewFrame(vararg.Pack("x")).Start()

	_, err := c.Int()
	if !errors.Is(err, vararg.ErrArgumentContract) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	var ce *vararg.ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContractError, got %T", err)
	}
	if ce.Pos != 0 || ce.Want != vararg.KindInt || ce.Got != vararg.KindString {
		t.Errorf("unexpected detail: %+v", ce)
	}
	if c.Pos() != 0 {
		t.Errorf("cursor advanced on mismatch: pos=%d", c.Pos())
	}
	if s, err := c.Text(); err != nil || s != "x" {
		t.Errorf("Text() after mismatch = %q, %v", s, err)
	}
}

func TestCursorReadPastEnd(t *testing.T) {
	c := vararg.NewFrame(vararg.Pack(1)).Start()
	if _, err := c.Next(); err != nil {
		t.Fatal(err)
	}
	_, err := c.Int()
	var ce *vararg.ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContractError, got %v", err)
	}
	if ce.Got != vararg.KindInvalid || ce.Pos != 1 {
		t.Errorf("unexpected detail: %+v", ce)
	}
}

func TestCursorDuplicateIsIndependent(t *testing.T) {
	// n = 5, read k = 2, then m = 2 from the duplicate.
	f := vararg.NewFrame(vararg.Pack(10, 11, 12, 13, 14))
	orig := f.Start()
	for i := 0; i < 2; i++ {
		if _, err := orig.Next(); err != nil {
			t.Fatal(err)
		}
	}

	dup, err := orig.Copy()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []int64{12, 13} {
		got, err := dup.Int()
		if err != nil || got != want {
			t.Fatalf("dup Int() = %d, %v; want %d", got, err, want)
		}
	}
	if err := dup.Close(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []int64{12, 13, 14} {
		got, err := orig.Int()
		if err != nil || got != want {
			t.Fatalf("orig Int() = %d, %v; want %d", got, err, want)
		}
	}
}

func TestCursorClosed(t *testing.T) {
	c := vararg.NewFrame(vararg.Pack(1)).Start()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := c.Next(); !errors.Is(err, vararg.ErrCursorClosed) {
		t.Errorf("Next() on closed cursor = %v", err)
	}
	if _, err := c.Copy(); !errors.Is(err, vararg.ErrCursorClosed) {
		t.Errorf("Copy() on closed cursor = %v", err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining() on closed cursor = %d", c.Remaining())
	}
}

func TestFrameEnd(t *testing.T) {
	t.Run("primary only", func(t *testing.T) {
		f := vararg.NewFrame(nil)
		c := f.Start()
		if err := f.End(); err != nil {
			t.Fatalf("End() = %v", err)
		}
		if !c.Closed() {
			t.Error("primary cursor not closed by End")
		}
	})

	t.Run("duplicate closed by handler", func(t *testing.T) {
		f := vararg.NewFrame(vararg.Pack(1))
		c := f.Start()
		d, _ := c.Copy()
		_ = d.Close()
		if f.Open() != 1 {
			t.Fatalf("Open() = %d, want 1", f.Open())
		}
		if err := f.End(); err != nil {
			t.Fatalf("End() = %v", err)
		}
	})

	t.Run("duplicate leaked", func(t *testing.T) {
		f := vararg.NewFrame(vararg.Pack(1))
		c := f.Start()
		d, _ := c.Copy()
		if err := f.End(); !errors.Is(err, vararg.ErrCursorLeak) {
			t.Fatalf("End() = %v, want ErrCursorLeak", err)
		}
		if !d.Closed() || f.Open() != 0 {
			t.Error("End did not close the leaked duplicate")
		}
	})
}

func TestReadSignature(t *testing.T) {
	sig, err := vararg.ParseSignature([]string{"int", "string"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []any
		wantErr bool
	}{
		{"exact", []any{3, "x"}, false},
		{"missing", []any{3}, true},
		{"extra", []any{3, "x", 4}, true},
		{"wrong kind", []any{"x", 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vararg.NewFrame(vararg.Pack(tt.args...)).Start()
			vals, err := vararg.ReadSignature(c, sig)
			if tt.wantErr {
				if !errors.Is(err, vararg.ErrArgumentContract) {
					t.Fatalf("expected contract violation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(vals) != 2 || vals[0].String() != "3" || vals[1].String() != "x" {
				t.Errorf("unexpected values: %v", vals)
			}
		})
	}
}

func TestRest(t *testing.T) {
	c := vararg.NewFrame(vararg.Pack(1, 2, 3)).Start()
	_, _ = c.Next()
	rest, err := c.Rest()
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 || rest[0].String() != "2" || rest[1].String() != "3" {
		t.Errorf("Rest() = %v", rest)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining() after Rest = %d", c.Remaining())
	}
}

func TestCursorNextPastEnd(t *testing.T) {
	c := vararg.NewFrame(nil).Start()
	_, err := c.Next()
	var ce *vararg.ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContractError, got %v", err)
	}
	if ce.Want != vararg.KindInvalid || ce.Got != vararg.KindInvalid {
		t.Errorf("unexpected detail: %+v", ce)
	}
	if msg := err.Error(); msg != "vararg: read at position 0 past end of arguments" {
		t.Errorf("message = %q", msg)
	}
}

func TestCursorOpaque(t *testing.T) {
	type job struct{ pages int }
	in := &job{pages: 4}
	c := vararg.NewFrame(vararg.Pack(in, 1)).Start()

	x, err := c.Opaque()
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := x.(*job); !ok || got != in {
		t.Errorf("Opaque() = %#v, want the same pointer", x)
	}
	if _, err := c.Opaque(); !errors.Is(err, vararg.ErrArgumentContract) {
		t.Errorf("Opaque() on an int = %v", err)
	}
}
