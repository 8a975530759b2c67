package library

import (
	"context"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultJournalDSN keeps the journal in memory for the life of the process.
const DefaultJournalDSN = ":memory:"

const (
	journalSchemaVersion = 1
	dialectSQLite        = "sqlite3"
	tableEvents          = "events"
	colSeq               = "seq"
	colEventID           = "event_id"
	colEventType         = "event_type"
	colOccurredAt        = "occurred_at"
	colPatronID          = "patron_id"
	colItemTitle         = "item_title"
	colBranchName        = "branch_name"
	colAmount            = "amount"
	colPayload           = "payload"
	aliasTotal           = "total"
)

// Journal is an append-only log of circulation events kept in SQLite.
// It implements Recorder so it can be attached to patrons directly.
type Journal struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  Logger

	mu     sync.RWMutex
	closed bool
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger used for journal diagnostics.
func WithJournalLogger(logger Logger) JournalOption {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// JournalFilter narrows Events. Zero fields match everything.
type JournalFilter struct {
	PatronID string
	Types    []EventType
}

// OpenJournal opens the SQLite database at dsn and applies schema migrations.
// Use DefaultJournalDSN for a private in-memory journal.
func OpenJournal(dsn string, opts ...JournalOption) (*Journal, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	j := &Journal{
		db:      db,
		dialect: goqu.Dialect(dialectSQLite),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(j)
	}

	if err := j.applyMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	j.logger.Debug("journal opened", logAttrDSN, dsn, logAttrSchema, journalSchemaVersion)
	return j, nil
}

// Close closes the database. Further calls return ErrJournalClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

func (j *Journal) applyMigrations() error {
	if _, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return errors.Wrap(err, "create meta table")
	}

	var current int
	_ = j.db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= journalSchemaVersion {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            event_id TEXT NOT NULL UNIQUE,
            event_type TEXT NOT NULL,
            occurred_at TEXT NOT NULL,
            patron_id TEXT NOT NULL,
            item_title TEXT NOT NULL DEFAULT '',
            branch_name TEXT NOT NULL DEFAULT '',
            amount INTEGER NOT NULL DEFAULT 0,
            payload TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_events_patron ON events(patron_id, event_type);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrap(err, "apply migration")
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, journalSchemaVersion); err != nil {
		return errors.Wrap(err, "record schema version")
	}

	return tx.Commit()
}

// Append stores e at the end of the journal.
func (j *Journal) Append(ctx context.Context, e Event) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJournalClosed
	}

	payload, err := e.PayloadToJSON()
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	query, args, err := j.dialect.
		Insert(tableEvents).
		Rows(goqu.Record{
			colEventID:    e.ID.String(),
			colEventType:  string(e.Type),
			colOccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
			colPatronID:   e.PatronID,
			colItemTitle:  e.ItemTitle,
			colBranchName: e.BranchName,
			colAmount:     int64(e.Amount),
			colPayload:    string(payload),
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build insert query")
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "append event %s", e.Type)
	}
	return nil
}

// Record appends e and logs a failure instead of returning it.
func (j *Journal) Record(e Event) {
	if err := j.Append(context.Background(), e); err != nil {
		j.logger.Error("journal append failed",
			logAttrError, err.Error(),
			logAttrEventID, e.ID.String(),
			logAttrEventType, string(e.Type))
	}
}

type journalRow struct {
	EventID    string `db:"event_id"`
	EventType  string `db:"event_type"`
	OccurredAt string `db:"occurred_at"`
	Payload    string `db:"payload"`
}

// Events returns the events matching filter in the order they were appended.
func (j *Journal) Events(ctx context.Context, filter JournalFilter) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrJournalClosed
	}

	sel := j.dialect.
		From(tableEvents).
		Select(colEventID, colEventType, colOccurredAt, colPayload).
		Where(filterExpressions(filter)...).
		Order(goqu.I(colSeq).Asc())

	query, args, err := sel.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select query")
	}

	var rows []journalRow
	if err := j.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "query events")
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// TotalPaid sums the FinePaid amounts recorded for patronID.
func (j *Journal) TotalPaid(ctx context.Context, patronID string) (Amount, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrJournalClosed
	}

	query, args, err := j.dialect.
		From(tableEvents).
		Select(goqu.COALESCE(goqu.SUM(colAmount), 0).As(aliasTotal)).
		Where(filterExpressions(JournalFilter{PatronID: patronID, Types: []EventType{EventFinePaid}})...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, errors.Wrap(err, "build sum query")
	}

	var total int64
	if err := j.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, errors.Wrap(err, "sum payments")
	}
	return Amount(total), nil
}

// Count returns the number of events in the journal.
func (j *Journal) Count(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrJournalClosed
	}

	query, args, err := j.dialect.
		From(tableEvents).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, errors.Wrap(err, "build count query")
	}

	var n int
	if err := j.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, "count events")
	}
	return n, nil
}

func filterExpressions(filter JournalFilter) []goqu.Expression {
	exprs := make([]goqu.Expression, 0, 2)
	if filter.PatronID != "" {
		exprs = append(exprs, goqu.C(colPatronID).Eq(filter.PatronID))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		exprs = append(exprs, goqu.C(colEventType).In(types))
	}
	return exprs
}

func (r journalRow) event() (Event, error) {
	id, err := uuid.Parse(r.EventID)
	if err != nil {
		return Event{}, errors.Wrapf(err, "parse event id %q", r.EventID)
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, r.OccurredAt)
	if err != nil {
		return Event{}, errors.Wrapf(err, "parse occurred_at of %s", r.EventID)
	}
	var p EventPayload
	if err := jsoniter.ConfigFastest.UnmarshalFromString(r.Payload, &p); err != nil {
		return Event{}, errors.Wrapf(err, "decode payload of %s", r.EventID)
	}
	return Event{
		ID:            id,
		Type:          EventType(r.EventType),
		OccurredAt:    occurredAt,
		PatronID:      p.PatronID,
		PatronName:    p.PatronName,
		ItemTitle:     p.ItemTitle,
		CatalogNumber: p.CatalogNumber,
		BranchName:    p.BranchName,
		Rating:        p.Rating,
		Amount:        p.Amount,
	}, nil
}
