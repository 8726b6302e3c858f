// pkg/vararg/cursor.go
package vararg

import "fmt"

// Frame owns the argument sequence of one call and every cursor opened over it.
// A Frame and its cursors belong to a single goroutine.
type Frame struct {
	vals    []Value
	cursors []*Cursor
}

// NewFrame wraps vals without copying them.
func NewFrame(vals []Value) *Frame {
	return &Frame{vals: vals}
}

// Len is the number of arguments the caller supplied.
func (f *Frame) Len() int { return len(f.vals) }

// Start opens the primary cursor at the first argument.
func (f *Frame) Start() *Cursor {
	return f.open(0)
}

func (f *Frame) open(pos int) *Cursor {
	c := &Cursor{frame: f, pos: pos}
	f.cursors = append(f.cursors, c)
	return c
}

// Open counts cursors that have not been closed.
func (f *Frame) Open() int {
	n := 0
	for _, c := range f.cursors {
		if !c.closed {
			n++
		}
	}
	return n
}

// End closes every cursor. The primary cursor is closed silently; any
// duplicate still open is reported as ErrCursorLeak.
func (f *Frame) End() error {
	leaked := 0
	for i, c := range f.cursors {
		if c.closed {
			continue
		}
		c.closed = true
		if i > 0 {
			leaked++
		}
	}
	if leaked > 0 {
		return fmt.Errorf("%w: %d duplicate(s)", ErrCursorLeak, leaked)
	}
	return nil
}

// Cursor is a forward-only view over a frame's arguments.
type Cursor struct {
	frame  *Frame
	pos    int
	closed bool
}

// Pos is the index of the next argument to be read.
func (c *Cursor) Pos() int { return c.pos }

// Remaining is the number of arguments not yet read through this cursor.
func (c *Cursor) Remaining() int {
	if c.closed {
		return 0
	}
	return len(c.frame.vals) - c.pos
}

func (c *Cursor) Closed() bool { return c.closed }

// Close is idempotent.
func (c *Cursor) Close() error {
	c.closed = true
	return nil
}

// Copy duplicates the cursor at its current position. The duplicate
// advances independently and must be closed on its own.
func (c *Cursor) Copy() (*Cursor, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	return c.frame.open(c.pos), nil
}

// Next reads the next argument whatever its kind.
func (c *Cursor) Next() (Value, error) {
	if c.closed {
		return Value{}, ErrCursorClosed
	}
	if c.pos >= len(c.frame.vals) {
		// Want stays KindInvalid: any kind would have done.
		return Value{}, &ContractError{Pos: c.pos}
	}
	v := c.frame.vals[c.pos]
	c.pos++
	return v, nil
}

// Expect reads the next argument and fails without advancing when its
// kind is not k.
func (c *Cursor) Expect(k Kind) (Value, error) {
	if c.closed {
		return Value{}, ErrCursorClosed
	}
	if c.pos >= len(c.frame.vals) {
		return Value{}, &ContractError{Pos: c.pos, Want: k}
	}
	v := c.frame.vals[c.pos]
	if v.kind != k {
		return Value{}, &ContractError{Pos: c.pos, Want: k, Got: v.kind}
	}
	c.pos++
	return v, nil
}

// Rest consumes every remaining argument.
func (c *Cursor) Rest() ([]Value, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	out := c.frame.vals[c.pos:len(c.frame.vals):len(c.frame.vals)]
	c.pos = len(c.frame.vals)
	return out, nil
}

func (c *Cursor) Int() (int64, error) {
	v, err := c.Expect(KindInt)
	return v.i, err
}

func (c *Cursor) Uint() (uint64, error) {
	v, err := c.Expect(KindUint)
	return v.u, err
}

func (c *Cursor) Float() (float64, error) {
	v, err := c.Expect(KindFloat)
	return v.f, err
}

// Text reads a string argument.
func (c *Cursor) Text() (string, error) {
	v, err := c.Expect(KindString)
	return v.s, err
}

func (c *Cursor) Bool() (bool, error) {
	v, err := c.Expect(KindBool)
	return v.u == 1, err
}

func (c *Cursor) Bytes() ([]byte, error) {
	v, err := c.Expect(KindBytes)
	return v.b, err
}

func (c *Cursor) Opaque() (any, error) {
	v, err := c.Expect(KindOpaque)
	return v.x, err
}

// ReadSignature reads exactly len(sig) arguments of the listed kinds and
// fails when arguments are left over.
func ReadSignature(c *Cursor, sig Signature) ([]Value, error) {
	out := make([]Value, 0, len(sig))
	for _, k := range sig {
		v, err := c.Expect(k)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if n := c.Remaining(); n > 0 {
		return nil, &ContractError{Pos: c.pos, Extra: n}
	}
	return out, nil
}
