// Package progress renders split progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultWidth is the bar width used when none is configured
const DefaultWidth = 60

// clearEOL erases the rest of the line left over from a longer redraw
const clearEOL = "\x1b[K"

// Bar draws a fill bar for the part being built
type Bar struct {
	w     io.Writer
	width int
}

// NewBar creates a Bar writing to w. A width below 1 selects DefaultWidth.
func NewBar(w io.Writer, width int) *Bar {
	if width < 1 {
		width = DefaultWidth
	}
	return &Bar{w: w, width: width}
}

// Statement redraws the bar in place with a preview of the last statement
func (b *Bar) Statement(chunk int, chunkBytes, maxBytes int64, preview string) {
	fmt.Fprintf(b.w, "\r%s %s...%s", b.render(strconv.Itoa(chunk)+" ", chunkBytes, maxBytes), preview, clearEOL)
}

// Flush finishes the bar line for a part that is being written
func (b *Bar) Flush(chunk int, chunkBytes, maxBytes int64) {
	fmt.Fprintf(b.w, "\r%s Writing to file%s\n", b.render(strconv.Itoa(chunk), chunkBytes, maxBytes), clearEOL)
}

// render returns "<prefix>[====    ]" with the prefix right-aligned to 4 columns
func (b *Bar) render(prefix string, current, max int64) string {
	filled := 0
	if max > 0 {
		filled = int(float64(current) / float64(max) * float64(b.width))
	}
	if filled > b.width {
		filled = b.width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("%4s[%s%s]", prefix, strings.Repeat("=", filled), strings.Repeat(" ", b.width-filled))
}

// Nop discards all progress notifications
type Nop struct{}

// Statement implements splitter.Reporter
func (Nop) Statement(int, int64, int64, string) {}

// Flush implements splitter.Reporter
func (Nop) Flush(int, int64, int64) {}
