// Package present renders inference progress and results on a terminal.
package present

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
)

var palette = []color.Attribute{color.FgCyan, color.FgMagenta, color.FgYellow, color.FgBlue, color.FgGreen}

// Terminal writes streamed text for one or more backends. With a single
// backend text is written as it arrives. With several, output is buffered
// per backend and written one complete line at a time behind a colored
// "[name]" prefix so concurrent streams do not interleave mid-line.
type Terminal struct {
	w     io.Writer
	multi bool

	mu      sync.Mutex
	printed map[string]int
	pending map[string]*strings.Builder
	prefix  map[string]*color.Color
	width   int
}

// Options configure a Terminal.
type Options struct {
	// NoColor disables ANSI colors regardless of the output.
	NoColor bool
}

// NewTerminal returns a presenter for the named backends.
func NewTerminal(w io.Writer, names []string, opts Options) *Terminal {
	t := &Terminal{
		w:       w,
		multi:   len(names) > 1,
		printed: make(map[string]int, len(names)),
		pending: make(map[string]*strings.Builder, len(names)),
		prefix:  make(map[string]*color.Color, len(names)),
	}
	for i, n := range names {
		c := color.New(palette[i%len(palette)], color.Bold)
		if opts.NoColor {
			c.DisableColor()
		}
		t.prefix[n] = c
		t.pending[n] = &strings.Builder{}
		if len(n) > t.width {
			t.width = len(n)
		}
	}
	return t
}

// Partial accepts the accumulated text of name. Only the part not yet seen
// is written. Its signature matches dispatch.PartialFunc.
func (t *Terminal) Partial(name, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := t.printed[name]
	if len(text) <= seen {
		return
	}
	delta := text[seen:]
	t.printed[name] = len(text)
	if !t.multi {
		_, _ = io.WriteString(t.w, delta)
		return
	}
	buf := t.bufFor(name)
	buf.WriteString(delta)
	s := buf.String()
	idx := strings.LastIndexByte(s, '\n')
	if idx < 0 {
		return
	}
	for _, line := range strings.Split(s[:idx], "\n") {
		t.writeLine(name, line)
	}
	buf.Reset()
	buf.WriteString(s[idx+1:])
}

// Flush writes whatever partial line is buffered for name.
func (t *Terminal) Flush(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.multi {
		if t.printed[name] > 0 {
			_, _ = io.WriteString(t.w, "\n")
		}
		return
	}
	buf := t.bufFor(name)
	if buf.Len() > 0 {
		t.writeLine(name, buf.String())
		buf.Reset()
	}
}

// FlushAll flushes every backend.
func (t *Terminal) FlushAll() {
	t.mu.Lock()
	names := make([]string, 0, len(t.pending))
	for n := range t.pending {
		names = append(names, n)
	}
	t.mu.Unlock()
	for _, n := range names {
		t.Flush(n)
	}
}

func (t *Terminal) bufFor(name string) *strings.Builder {
	b, ok := t.pending[name]
	if !ok {
		b = &strings.Builder{}
		t.pending[name] = b
	}
	return b
}

func (t *Terminal) writeLine(name, line string) {
	c, ok := t.prefix[name]
	tag := fmt.Sprintf("[%-*s]", t.width, name)
	if ok {
		tag = c.Sprint(tag)
	}
	fmt.Fprintf(t.w, "%s %s\n", tag, line)
}

// Result prints a one-line outcome for a single backend.
func (t *Terminal) Result(r backend.InferenceResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, resultLine(r, t.width, t.prefix[r.Backend]))
}

// Summary prints one line per backend and the total wall time.
func (t *Terminal) Summary(res dispatch.DispatchResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rule := strings.Repeat("─", 60)
	fmt.Fprintln(t.w, rule)
	for _, n := range res.Names() {
		fmt.Fprintln(t.w, resultLine(res.Results[n], t.width, t.prefix[n]))
	}
	fmt.Fprintln(t.w, rule)
	fmt.Fprintf(t.w, "total %.2fs, %d/%d succeeded\n", res.TotalElapsedSeconds(), res.Succeeded(), len(res.Results))
}

func resultLine(r backend.InferenceResult, width int, c *color.Color) string {
	name := fmt.Sprintf("%-*s", width, r.Backend)
	if c != nil {
		name = c.Sprint(name)
	}
	label := "-"
	if l, ok := r.Label(); ok {
		label = string(l)
	}
	status := statusString(r.Status, c == nil || !colorEnabled(c))
	line := fmt.Sprintf("%s  %-11s  %-8s  %6.2fs", name, status, label, r.ElapsedSeconds())
	if r.Err != nil {
		line += "  " + r.Err.Error()
	}
	return line
}

func statusString(s backend.Status, plain bool) string {
	text := string(s)
	if plain {
		return text
	}
	switch s {
	case backend.StatusOK:
		return color.GreenString(text)
	case backend.StatusUnavailable:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

// colorEnabled reports whether c emits escape codes.
func colorEnabled(c *color.Color) bool {
	return c.Sprint("x") != "x"
}
