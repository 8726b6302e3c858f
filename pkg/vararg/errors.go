package vararg

import (
	"errors"
	"fmt"
)

var (
	// ErrArgumentContract is matched by every caller/handler argument mismatch.
	ErrArgumentContract = errors.New("vararg: argument contract violation")

	// ErrCursorClosed is returned by reads and copies on a closed cursor.
	ErrCursorClosed = errors.New("vararg: cursor closed")

	// ErrCursorLeak reports duplicates a handler did not close itself.
	ErrCursorLeak = errors.New("vararg: cursor left open")
)

// ContractError describes a single mismatch between what a handler read
// and what the caller supplied. Got is KindInvalid when the read ran past
// the supplied arguments; Want is KindInvalid when the read accepted any kind.
type ContractError struct {
	Pos   int
	Want  Kind
	Got   Kind
	Extra int // arguments left unread under a strict signature
}

func (e *ContractError) Error() string {
	switch {
	case e.Extra > 0:
		return fmt.Sprintf("vararg: %d unread argument(s) after position %d", e.Extra, e.Pos)
	case e.Got == KindInvalid && e.Want == KindInvalid:
		return fmt.Sprintf("vararg: read at position %d past end of arguments", e.Pos)
	case e.Got == KindInvalid:
		return fmt.Sprintf("vararg: read of %s at position %d past end of arguments", e.Want, e.Pos)
	default:
		return fmt.Sprintf("vararg: position %d is %s, handler expected %s", e.Pos, e.Got, e.Want)
	}
}

func (e *ContractError) Unwrap() error { return ErrArgumentContract }
