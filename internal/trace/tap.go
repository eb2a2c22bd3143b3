// Package trace implements the Host Interface's debug tap: a purely
// diagnostic side channel that observes engine execution without ever
// influencing it. Every Event recorded here is available to the Host for
// debugging a run, but nothing in internal/engine consults the tap to
// decide control flow, and nothing written through GetOutput or
// GetPrinterOutput depends on whether a tap is attached.
package trace

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
)

// Event is one observed moment in a run, keyed by a free-form Kind
// ("enter-operation", "arithmetic", "write-item", ...) plus the
// operation number active when it fired and an optional payload for
// Render to pretty-print.
type Event struct {
	Kind      string
	Operation int
	Detail    interface{}
}

// Tap accumulates Events for a single interpreter run, identified by a
// RunID so a Host juggling multiple interpreters can tell their logs
// apart.
type Tap struct {
	runID  uuid.UUID
	events []Event
}

// NewTap starts a fresh tap with a new run identifier.
func NewTap() *Tap {
	return &Tap{runID: uuid.New()}
}

// RunID returns the correlation identifier for this run.
func (t *Tap) RunID() uuid.UUID {
	return t.runID
}

// Event records one observed moment. Safe to call on a nil *Tap (a no-op),
// so callers needn't guard every call site with a nil check.
func (t *Tap) Event(e Event) {
	if t == nil {
		return
	}
	t.events = append(t.events, e)
}

// Events returns every recorded Event in order.
func (t *Tap) Events() []Event {
	if t == nil {
		return nil
	}
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Render formats the tap's event log as a human-readable trace: one line
// per event, decimals and structs pretty-printed, counts summarized in
// humanized form, with ANSI color gated on whether the destination
// writer looks like a terminal.
func (t *Tap) Render(w *os.File) string {
	if t == nil {
		return ""
	}
	color := isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())

	var b strings.Builder
	fmt.Fprintf(&b, "run %s — %s\n", t.runID, humanize.Comma(int64(len(t.events))))
	for i, e := range t.events {
		line := fmt.Sprintf("[%s] op %d: %s", humanize.Ordinal(i+1), e.Operation, e.Kind)
		if e.Detail != nil {
			line += " " + pretty.Sprint(e.Detail)
		}
		if color {
			line = "\x1b[2m" + line + "\x1b[0m"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
