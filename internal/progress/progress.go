// Package progress is the observability sink for long-running archive
// phases: a terminal progress bar for issue threads and log lines for
// wiki page inspection.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Sink receives progress ticks and diagnostic lines from builders.
type Sink interface {
	// Tick reports one completed unit of work.
	Tick()

	// Logf reports a diagnostic line.
	Logf(format string, args ...any)
}

// Discard returns a Sink that ignores everything. Used in tests and when
// no terminal output is wanted.
func Discard() Sink {
	return discard{}
}

type discard struct{}

func (discard) Tick()               {}
func (discard) Logf(string, ...any) {}

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	logStyle   = lipgloss.NewStyle().Faint(true)
)

// Logs returns a Sink that writes diagnostic lines to out and ignores
// ticks. Used for phases with no meaningful total, like the wiki walk.
func Logs(out io.Writer) Sink {
	return logs{out: out}
}

type logs struct {
	out io.Writer
}

func (logs) Tick() {}

func (l logs) Logf(format string, args ...any) {
	fmt.Fprintln(l.out, logStyle.Render(fmt.Sprintf(format, args...)))
}

// Bar is a Sink rendering a progress bar to a terminal writer. Safe for
// concurrent use.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	label string
	total int
	done  int
	bar   progress.Model
}

// NewBar creates a Bar labelled label and sized to total ticks, writing
// to out (normally stderr so the bar never mixes with archive data).
func NewBar(out io.Writer, label string, total int) *Bar {
	return &Bar{
		out:   out,
		label: label,
		total: total,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

// Tick advances the bar by one unit and redraws it.
func (b *Bar) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done < b.total {
		b.done++
	}
	b.draw()
	if b.done == b.total {
		fmt.Fprintln(b.out)
	}
}

// Logf prints a diagnostic line above the bar.
func (b *Bar) Logf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Fprintf(b.out, "\r\033[K%s\n", logStyle.Render(fmt.Sprintf(format, args...)))
	if b.done > 0 && b.done < b.total {
		b.draw()
	}
}

func (b *Bar) draw() {
	frac := 1.0
	if b.total > 0 {
		frac = float64(b.done) / float64(b.total)
	}
	fmt.Fprintf(b.out, "\r\033[K%s %s %d/%d",
		labelStyle.Render(b.label), b.bar.ViewAs(frac), b.done, b.total)
}
