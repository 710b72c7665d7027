// Package table defines the rendering surface SyncBoard writes to.
//
// A table is anything that can be cleared and have rows appended to it in
// order. Pollers render through the [Sink] interface only, so the same render
// logic drives the in-memory store behind the web dashboard, the terminal UI,
// and test doubles.
//
// A render is always the sequence Clear, Append for every row, then Flush
// if the sink implements [Flusher]. Use [Replace] rather than calling the
// methods by hand.
package table

import (
	"strings"
	"sync"
)

// Cell is a single rendered value.
//
// Class carries an optional state class (for example "online" or "offline")
// that surfaces map to a CSS class or a colour.
type Cell struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Row is an ordered list of cells.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Text returns a plain cell with no class.
func Text(s string) Cell {
	return Cell{Text: s}
}

// Classed returns a cell carrying a state class.
func Classed(text, class string) Cell {
	return Cell{Text: text, Class: class}
}

// NewRow builds a [Row] from cells.
func NewRow(cells ...Cell) Row {
	return Row{Cells: cells}
}

// Texts returns the display text of every cell in order.
func (r Row) Texts() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Text
	}
	return out
}

// String joins the cell texts with " | ", mostly for logs and test failures.
func (r Row) String() string {
	return strings.Join(r.Texts(), " | ")
}

// Layout describes how a named table is presented.
type Layout struct {
	// Name identifies the table and is used as its element id on the web page.
	Name string

	// Heading is shown above the table.
	Heading string

	// Columns are the header cells.
	Columns []string
}

// Sink is a table body that supports the clear-then-append render contract.
//
// Implementations need not be safe for concurrent renders; the poller that
// owns a sink serializes its own renders.
type Sink interface {
	// Clear removes every row from the table body.
	Clear()

	// Append adds a row after the last one.
	Append(row Row)
}

// Flusher is implemented by sinks that want to know when a render is
// complete, typically to publish the finished table in one step.
type Flusher interface {
	Flush()
}

// Replace renders rows into s: clear, append each row in order, then flush.
func Replace(s Sink, rows []Row) {
	s.Clear()
	for _, row := range rows {
		s.Append(row)
	}
	if f, ok := s.(Flusher); ok {
		f.Flush()
	}
}

// Multi fans a render out to several sinks in order.
type Multi []Sink

// Clear clears every sink.
func (m Multi) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

// Append appends row to every sink.
func (m Multi) Append(row Row) {
	for _, s := range m {
		s.Append(row)
	}
}

// Flush flushes every sink that implements [Flusher].
func (m Multi) Flush() {
	for _, s := range m {
		if f, ok := s.(Flusher); ok {
			f.Flush()
		}
	}
}

// Buffer is a concurrency-safe in-memory [Sink].
//
// It records how many times it was cleared and flushed, which makes it
// convenient for embedding SyncBoard in other programs and for tests.
type Buffer struct {
	mu      sync.Mutex
	rows    []Row
	clears  int
	flushes int
}

// Clear implements [Sink].
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = nil
	b.clears++
}

// Append implements [Sink].
func (b *Buffer) Append(row Row) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, row)
}

// Flush implements [Flusher].
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushes++
}

// Rows returns a copy of the current rows.
func (b *Buffer) Rows() []Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Clears returns the number of times Clear was called.
func (b *Buffer) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

// Flushes returns the number of completed renders.
func (b *Buffer) Flushes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushes
}
