package library

import (
	"context"
	"iter"
)

// LibraryManager is a thin façade over the catalog, billing, reporting and the
// event journal, keeping CLI code simple.
type LibraryManager struct {
	catalog  *Catalog
	reporter *CatalogReporter
	billing  BillingCalculator
	journal  *Journal
	recorder Recorder
	policy   BranchPolicy
	logger   Logger
}

// Options configures NewLibraryManager.
type Options struct {
	// DailyRate is the fine per overdue day per item; zero means DefaultDailyRate.
	DailyRate Amount
	// BranchPolicy applies to every patron created by the manager.
	BranchPolicy BranchPolicy
	// JournalDSN enables the event journal when non-empty.
	JournalDSN string
	// Recorders receive every circulation event in addition to the journal.
	Recorders []Recorder
	Logger    Logger
}

// NewLibraryManager creates an empty library and, when opts.JournalDSN is
// set, opens its event journal.
func NewLibraryManager(opts Options) (*LibraryManager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	policy := opts.BranchPolicy
	if policy == "" {
		policy = BranchPolicyAppend
	}

	catalog := NewCatalog()
	lm := &LibraryManager{
		catalog:  catalog,
		reporter: NewCatalogReporter(catalog),
		billing:  NewBillingCalculator(opts.DailyRate),
		policy:   policy,
		logger:   logger,
	}

	recorders := MultiRecorder{NewLogRecorder(logger)}
	if opts.JournalDSN != "" {
		journal, err := OpenJournal(opts.JournalDSN, WithJournalLogger(logger))
		if err != nil {
			return nil, err
		}
		lm.journal = journal
		recorders = append(recorders, journal)
	}
	recorders = append(recorders, opts.Recorders...)
	lm.recorder = recorders

	logger.Debug("library ready",
		logAttrPolicy, string(policy),
		logAttrDailyRate, int64(lm.billing.DailyRate()))
	return lm, nil
}

// Close closes the journal, if any.
func (lm *LibraryManager) Close() error {
	if lm.journal == nil {
		return nil
	}
	return lm.journal.Close()
}

func (lm *LibraryManager) Catalog() *Catalog          { return lm.catalog }
func (lm *LibraryManager) Billing() BillingCalculator { return lm.billing }
func (lm *LibraryManager) Reporter() *CatalogReporter { return lm.reporter }
func (lm *LibraryManager) Journal() *Journal          { return lm.journal }

// ------------------ Branch and item helpers ------------------

// AddBranch creates a branch and registers it.
func (lm *LibraryManager) AddBranch(name, location string) *Branch {
	b := NewBranch(name, location)
	lm.catalog.RegisterBranch(b)
	return b
}

// AddPhysicalBook creates a book and registers it.
func (lm *LibraryManager) AddPhysicalBook(title, author, catalogNumber, category string) *PhysicalBook {
	b := NewPhysicalBook(title, author, catalogNumber, category)
	lm.catalog.RegisterItem(b)
	return b
}

// AddElectronicBook creates an ebook and registers it.
func (lm *LibraryManager) AddElectronicBook(title, author, catalogNumber, category string, fileSizeMB float64) *ElectronicBook {
	b := NewElectronicBook(title, author, catalogNumber, category, fileSizeMB)
	lm.catalog.RegisterItem(b)
	return b
}

// PlaceItem puts item on branch's shelves.
func (lm *LibraryManager) PlaceItem(item Item, branch *Branch) {
	branch.AddItem(item)
}

// ------------------ Patrons ------------------

// NewPatron returns a patron wired to the manager's recorders and branch policy.
func (lm *LibraryManager) NewPatron(name string, age int, patronID string) *Patron {
	return NewPatron(name, age, patronID,
		WithRecorder(lm.recorder),
		WithBranchPolicy(lm.policy))
}

// History returns the journaled events of a patron. Without a journal it
// returns nil.
func (lm *LibraryManager) History(ctx context.Context, patronID string) ([]Event, error) {
	if lm.journal == nil {
		return nil, nil
	}
	return lm.journal.Events(ctx, JournalFilter{PatronID: patronID})
}

// ------------------ Billing and reporting ------------------

// Invoice computes the fine owed by patron for items overdueDays late.
func (lm *LibraryManager) Invoice(patron *Patron, items []Item, overdueDays int) Invoice {
	inv := lm.billing.GenerateInvoice(patron, items, overdueDays)
	lm.logger.Info(inv.String(),
		logAttrPatronID, inv.PatronID,
		logAttrItemCount, inv.ItemCount,
		logAttrAmount, int64(inv.Total))
	return inv
}

func (lm *LibraryManager) ListItems() iter.Seq[string] { return lm.reporter.ListItems() }
func (lm *LibraryManager) TotalItems() int             { return lm.reporter.CountItems() }
