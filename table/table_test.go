package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderSink records the sequence of calls it receives.
type orderSink struct {
	calls []string
}

func (s *orderSink) Clear()         { s.calls = append(s.calls, "clear") }
func (s *orderSink) Append(row Row) { s.calls = append(s.calls, "append:"+row.String()) }
func (s *orderSink) Flush()         { s.calls = append(s.calls, "flush") }

// plainSink does not implement Flusher.
type plainSink struct {
	rows []Row
}

func (s *plainSink) Clear()         { s.rows = nil }
func (s *plainSink) Append(row Row) { s.rows = append(s.rows, row) }

func TestReplace_ClearsAppendsInOrderThenFlushes(t *testing.T) {
	sink := &orderSink{}

	Replace(sink, []Row{
		NewRow(Text("a"), Text("1")),
		NewRow(Text("b"), Text("2")),
	})

	assert.Equal(t, []string{"clear", "append:a | 1", "append:b | 2", "flush"}, sink.calls)
}

func TestReplace_EmptyRowsStillClears(t *testing.T) {
	sink := &orderSink{}

	Replace(sink, nil)

	assert.Equal(t, []string{"clear", "flush"}, sink.calls)
}

func TestReplace_SinkWithoutFlusher(t *testing.T) {
	sink := &plainSink{rows: []Row{NewRow(Text("stale"))}}

	Replace(sink, []Row{NewRow(Text("fresh"))})

	require.Len(t, sink.rows, 1)
	assert.Equal(t, "fresh", sink.rows[0].Cells[0].Text)
}

func TestMulti_FansOut(t *testing.T) {
	a := &Buffer{}
	b := &plainSink{}

	Replace(Multi{a, b}, []Row{NewRow(Text("x")), NewRow(Text("y"))})

	assert.Len(t, a.Rows(), 2)
	assert.Equal(t, 1, a.Flushes())
	assert.Len(t, b.rows, 2)
}

func TestBuffer_ReplaceIsWholesale(t *testing.T) {
	buf := &Buffer{}

	Replace(buf, []Row{NewRow(Text("a")), NewRow(Text("b"))})
	Replace(buf, []Row{NewRow(Text("c"))})

	rows := buf.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].Cells[0].Text)
	assert.Equal(t, 2, buf.Clears())
	assert.Equal(t, 2, buf.Flushes())
}

func TestBuffer_RowsReturnsCopy(t *testing.T) {
	buf := &Buffer{}
	Replace(buf, []Row{NewRow(Text("a"))})

	rows := buf.Rows()
	rows[0] = NewRow(Text("mutated"))

	assert.Equal(t, "a", buf.Rows()[0].Cells[0].Text)
}

func TestRow_Texts(t *testing.T) {
	row := NewRow(Text("nodeA"), Classed("Online", "online"))

	assert.Equal(t, []string{"nodeA", "Online"}, row.Texts())
	assert.Equal(t, "online", row.Cells[1].Class)
	assert.Empty(t, row.Cells[0].Class)
}
