package library

// Logger is the structured logger used across the package. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Log attribute keys shared by every component.
const (
	logAttrEventID   = "event_id"
	logAttrEventType = "event_type"
	logAttrPatron    = "patron"
	logAttrPatronID  = "patron_id"
	logAttrTitle     = "title"
	logAttrBranch    = "branch"
	logAttrRating    = "rating"
	logAttrAmount    = "amount"
	logAttrError     = "error"
	logAttrItemCount = "item_count"
	logAttrSchema    = "schema_version"
	logAttrDSN       = "dsn"
	logAttrPolicy    = "branch_policy"
	logAttrDailyRate = "daily_rate"
)
