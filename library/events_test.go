package library

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logHandlerSpy captures slog records for assertions.
type logHandlerSpy struct {
	mu      sync.Mutex
	records []slog.Record
}

func (s *logHandlerSpy) Handle(_ context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *logHandlerSpy) Enabled(context.Context, slog.Level) bool { return true }
func (s *logHandlerSpy) WithAttrs([]slog.Attr) slog.Handler       { return s }
func (s *logHandlerSpy) WithGroup(string) slog.Handler            { return s }

func (s *logHandlerSpy) attrs(i int) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]any{}
	s.records[i].Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	return out
}

func TestLogRecorder(t *testing.T) {
	spy := &logHandlerSpy{}
	book, _, main, _ := newFixture()
	p := NewPatron("John Doe", 30, "C001", WithRecorder(NewLogRecorder(slog.New(spy))))

	require.NoError(t, p.Borrow(book, main))
	require.NoError(t, p.PayFine(6))

	require.Len(t, spy.records, 2)
	assert.Equal(t, "John Doe borrowed 1984 from Main Branch branch", spy.records[0].Message)
	borrow := spy.attrs(0)
	assert.Equal(t, "ItemBorrowed", borrow[logAttrEventType])
	assert.Equal(t, "1984", borrow[logAttrTitle])
	assert.Equal(t, "Main Branch", borrow[logAttrBranch])

	assert.Equal(t, "John Doe paid a fine of 6 USD", spy.records[1].Message)
	assert.Equal(t, int64(6), spy.attrs(1)[logAttrAmount])
}

func TestWriterAndMultiRecorder(t *testing.T) {
	var buf bytes.Buffer
	var seen []EventType
	rec := MultiRecorder{
		NewWriterRecorder(&buf),
		nil,
		RecorderFunc(func(e Event) { seen = append(seen, e.Type) }),
	}
	book, _, main, _ := newFixture()
	p := NewPatron("John Doe", 30, "C001", WithRecorder(rec))

	require.NoError(t, p.Borrow(book, main))
	require.NoError(t, p.ReturnItem(book, main))

	assert.Equal(t, "John Doe borrowed 1984 from Main Branch branch\nJohn Doe returned 1984 to Main Branch branch\n", buf.String())
	assert.Equal(t, []EventType{EventItemBorrowed, EventItemReturned}, seen)
}

func TestEventPayloadJSON(t *testing.T) {
	spy := &eventSpy{}
	book, _, _, east := newFixture()
	p := NewPatron("John Doe", 30, "C001", WithRecorder(spy))
	require.NoError(t, p.Borrow(book, east))

	e := spy.events[0]
	assert.EqualValues(t, 7, e.ID.Version())

	raw, err := e.PayloadToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(raw, &decoded))
	assert.Equal(t, "C001", decoded["patron_id"])
	assert.Equal(t, "1984", decoded["item_title"])
	assert.Equal(t, "123456789", decoded["catalog_number"])
	assert.Equal(t, "East Side Branch", decoded["branch_name"])
	assert.NotContains(t, decoded, "amount")
}
