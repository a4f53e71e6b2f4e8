package render

import (
	"fmt"
	"io"
)

// Terminal is a Page that redraws itself on an io.Writer when flushed.
type Terminal struct {
	*Page
	out   io.Writer
	clear bool
}

// NewTerminal returns a terminal target writing to out. With clear set the
// screen is wiped before every redraw.
func NewTerminal(out io.Writer, clear bool) *Terminal {
	return &Terminal{Page: NewPage(), out: out, clear: clear}
}

// Flush redraws the page.
func (t *Terminal) Flush() error {
	if t.clear {
		if _, err := io.WriteString(t.out, "\033[H\033[2J"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(t.out, t.Page.String())
	return err
}
