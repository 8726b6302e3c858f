package device

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-print/pkg/vararg"
)

// Screen is a snapshot of an LCD after a write.
type Screen struct {
	Destination string    `json:"destination"`
	Lines       []string  `json:"lines"`
	At          time.Time `json:"at"`
}

// Streamer is implemented by devices whose output can be watched live.
type Streamer interface {
	Subscribe() (<-chan Screen, func())
}

// LCD simulates a rows x cols character display. Each request becomes one
// line, clipped to the display width, scrolled in from the bottom.
type LCD struct {
	name string
	rows int
	cols int
	sig  vararg.Signature
	out  io.Writer

	mu    sync.Mutex
	lines []string
	subs  map[chan Screen]struct{}
}

// NewLCD builds a display. out may be nil; rows and cols default to 2x16.
func NewLCD(name string, rows, cols int, sig vararg.Signature, out io.Writer) *LCD {
	if rows <= 0 {
		rows = 2
	}
	if cols <= 0 {
		cols = 16
	}
	return &LCD{
		name:  name,
		rows:  rows,
		cols:  cols,
		sig:   sig,
		out:   out,
		lines: make([]string, rows),
		subs:  make(map[chan Screen]struct{}),
	}
}

func (d *LCD) Handle(_ context.Context, format string, args *vararg.Cursor) error {
	rec, err := readRecord(d.name, d.sig, format, args)
	if err != nil {
		return err
	}

	d.mu.Lock()
	copy(d.lines, d.lines[1:])
	d.lines[d.rows-1] = clip(rec.Text(), d.cols)
	scr := Screen{Destination: d.name, Lines: append([]string(nil), d.lines...), At: rec.At}
	for ch := range d.subs {
		select {
		case ch <- scr:
		default: // slow watcher; drop the frame
		}
	}
	d.mu.Unlock()

	if d.out != nil {
		if _, err := io.WriteString(d.out, render(scr, d.cols)); err != nil {
			return fmt.Errorf("lcd %s: write: %w", d.name, err)
		}
	}
	return nil
}

// Lines returns the current contents, top row first.
func (d *LCD) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

func (d *LCD) Subscribe() (<-chan Screen, func()) {
	ch := make(chan Screen, 8)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, ch)
			d.mu.Unlock()
			close(ch)
		})
	}
}

// clip flattens s to a single display line of at most cols runes.
func clip(s string, cols int) string {
	s = strings.TrimRight(s, "\r\n")
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	r := []rune(s)
	if len(r) > cols {
		r = r[:cols]
	}
	return string(r)
}

func render(s Screen, cols int) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", cols) + "+\n"
	b.WriteString(border)
	for _, l := range s.Lines {
		b.WriteString("|")
		b.WriteString(l)
		b.WriteString(strings.Repeat(" ", cols-len([]rune(l))))
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}
