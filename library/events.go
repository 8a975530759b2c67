package library

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// EventType names a circulation event.
type EventType string

const (
	EventItemBorrowed EventType = "ItemBorrowed"
	EventItemReturned EventType = "ItemReturned"
	EventItemRated    EventType = "ItemRated"
	EventFinePaid     EventType = "FinePaid"
)

// Event is an observable fact emitted by a Patron operation.
type Event struct {
	ID         uuid.UUID
	Type       EventType
	OccurredAt time.Time

	PatronID   string
	PatronName string

	// Item fields are empty for FinePaid.
	ItemTitle     string
	CatalogNumber string
	BranchName    string

	Rating int
	Amount Amount
}

// EventPayload is the JSON body stored for an event.
type EventPayload struct {
	PatronID      string `json:"patron_id"`
	PatronName    string `json:"patron_name"`
	ItemTitle     string `json:"item_title,omitempty"`
	CatalogNumber string `json:"catalog_number,omitempty"`
	BranchName    string `json:"branch_name,omitempty"`
	Rating        int    `json:"rating,omitempty"`
	Amount        Amount `json:"amount,omitempty"`
}

func newEvent(typ EventType, p *Patron) Event {
	return Event{
		ID:         uuid.Must(uuid.NewV7()),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		PatronID:   p.id,
		PatronName: p.name,
	}
}

func (e Event) withItem(item Item) Event {
	e.ItemTitle = item.Title()
	e.CatalogNumber = item.CatalogNumber()
	return e
}

// Payload returns the event's JSON body.
func (e Event) Payload() EventPayload {
	return EventPayload{
		PatronID:      e.PatronID,
		PatronName:    e.PatronName,
		ItemTitle:     e.ItemTitle,
		CatalogNumber: e.CatalogNumber,
		BranchName:    e.BranchName,
		Rating:        e.Rating,
		Amount:        e.Amount,
	}
}

// PayloadToJSON marshals the event payload.
func (e Event) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e.Payload())
}

// String renders the event as a console line.
func (e Event) String() string {
	switch e.Type {
	case EventItemBorrowed:
		return fmt.Sprintf("%s borrowed %s from %s branch", e.PatronName, e.ItemTitle, e.BranchName)
	case EventItemReturned:
		return fmt.Sprintf("%s returned %s to %s branch", e.PatronName, e.ItemTitle, e.BranchName)
	case EventItemRated:
		return fmt.Sprintf("%s rated the book '%s' with %d stars", e.PatronName, e.ItemTitle, e.Rating)
	case EventFinePaid:
		return fmt.Sprintf("%s paid a fine of %s", e.PatronName, e.Amount)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.PatronName)
	}
}

// Recorder receives circulation events. Implementations must not fail the
// operation that emitted the event; they report their own errors.
type Recorder interface {
	Record(e Event)
}

// RecorderFunc adapts a function to a Recorder.
type RecorderFunc func(e Event)

func (f RecorderFunc) Record(e Event) { f(e) }

// MultiRecorder fans an event out to each recorder in order.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(e Event) {
	for _, r := range m {
		if r != nil {
			r.Record(e)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

// LogRecorder writes each event as a structured log line.
type LogRecorder struct {
	logger Logger
}

// NewLogRecorder returns a recorder logging to logger at info level.
func NewLogRecorder(logger Logger) *LogRecorder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(e Event) {
	args := []any{
		logAttrEventID, e.ID.String(),
		logAttrEventType, string(e.Type),
		logAttrPatron, e.PatronName,
		logAttrPatronID, e.PatronID,
	}
	switch e.Type {
	case EventItemBorrowed, EventItemReturned:
		args = append(args, logAttrTitle, e.ItemTitle, logAttrBranch, e.BranchName)
	case EventItemRated:
		args = append(args, logAttrTitle, e.ItemTitle, logAttrRating, e.Rating)
	case EventFinePaid:
		args = append(args, logAttrAmount, int64(e.Amount))
	}
	r.logger.Info(e.String(), args...)
}

// WriterRecorder prints each event's String form on its own line.
type WriterRecorder struct {
	w io.Writer
}

func NewWriterRecorder(w io.Writer) *WriterRecorder {
	return &WriterRecorder{w: w}
}

func (r *WriterRecorder) Record(e Event) {
	fmt.Fprintln(r.w, e.String())
}
