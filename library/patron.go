package library

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// BranchPolicy decides how borrowing and returning affect branch holdings.
type BranchPolicy string

const (
	// BranchPolicyAppend adds a borrowed item to the branch it was borrowed
	// through and leaves branches untouched on return.
	BranchPolicyAppend BranchPolicy = "append"

	// BranchPolicyTransfer moves items: borrowing takes the item out of the
	// branch, returning puts it into the return branch. An item on loan is
	// held by no branch.
	BranchPolicyTransfer BranchPolicy = "transfer"
)

// ParseBranchPolicy converts s to a BranchPolicy.
func ParseBranchPolicy(s string) (BranchPolicy, error) {
	switch p := BranchPolicy(s); p {
	case BranchPolicyAppend, BranchPolicyTransfer:
		return p, nil
	default:
		return "", errors.Wrapf(ErrUnknownBranchPolicy, "%q", s)
	}
}

// Patron is a person who borrows items and pays fines.
type Patron struct {
	name string
	age  int
	id   string

	policy   BranchPolicy
	recorder Recorder

	mu       sync.Mutex
	borrowed []Item
	payments []Amount
}

// PatronOption configures a Patron.
type PatronOption func(*Patron)

// WithRecorder sets the recorder receiving the patron's events.
func WithRecorder(r Recorder) PatronOption {
	return func(p *Patron) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithBranchPolicy sets how borrow and return affect branches.
func WithBranchPolicy(policy BranchPolicy) PatronOption {
	return func(p *Patron) {
		p.policy = policy
	}
}

// NewPatron returns a patron with no borrowed items and an empty payment
// history. The default policy is BranchPolicyAppend.
func NewPatron(name string, age int, patronID string, opts ...PatronOption) *Patron {
	p := &Patron{
		name:     name,
		age:      age,
		id:       patronID,
		policy:   BranchPolicyAppend,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Patron) Name() string { return p.name }
func (p *Patron) Age() int     { return p.age }
func (p *Patron) ID() string   { return p.id }

// BorrowedItems returns a snapshot of the items currently on loan.
func (p *Patron) BorrowedItems() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.borrowed)
}

// PaymentHistory returns a snapshot of every amount paid, oldest first.
func (p *Patron) PaymentHistory() []Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.payments)
}

// HasBorrowed reports whether item is currently on loan to the patron.
func (p *Patron) HasBorrowed(item Item) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.borrowed, item)
}

// Borrow puts item on loan to the patron through branch.
//
// Returns ErrInvalidItemKind for a nil or unknown item and ErrInvalidBranch
// for a nil branch. Under BranchPolicyTransfer it returns ErrItemNotInBranch
// when branch does not hold the item.
func (p *Patron) Borrow(item Item, branch *Branch) error {
	if !isCatalogItem(item) {
		return errors.Wrapf(ErrInvalidItemKind, "%s borrowing %T", p.name, item)
	}
	if branch == nil {
		return errors.Wrapf(ErrInvalidBranch, "%s borrowing %q", p.name, item.Title())
	}

	if p.policy == BranchPolicyTransfer {
		if !branch.removeItem(item) {
			return errors.Wrapf(ErrItemNotInBranch, "%s borrowing %q from %s", p.name, item.Title(), branch.Name())
		}
	} else {
		branch.AddItem(item)
	}

	p.mu.Lock()
	p.borrowed = append(p.borrowed, item)
	p.mu.Unlock()

	e := newEvent(EventItemBorrowed, p).withItem(item)
	e.BranchName = branch.Name()
	p.recorder.Record(e)
	return nil
}

// ReturnItem ends the loan of item at branch.
// Returns ErrInvalidBranch for a nil branch and ErrItemNotBorrowed if the item
// is not on loan to the patron. The loan is untouched on error.
func (p *Patron) ReturnItem(item Item, branch *Branch) error {
	if branch == nil {
		return errors.Wrapf(ErrInvalidBranch, "%s returning %T", p.name, item)
	}

	p.mu.Lock()
	i := slices.Index(p.borrowed, item)
	if i < 0 {
		p.mu.Unlock()
		return p.notBorrowed("returning", item)
	}
	p.borrowed = slices.Delete(p.borrowed, i, i+1)
	p.mu.Unlock()

	if p.policy == BranchPolicyTransfer {
		branch.AddItem(item)
	}

	e := newEvent(EventItemReturned, p).withItem(item)
	e.BranchName = branch.Name()
	p.recorder.Record(e)
	return nil
}

// Rate emits a rating for a borrowed item. The rating is not stored and its
// range is not checked.
// Returns ErrItemNotBorrowed if the item is not on loan to the patron.
func (p *Patron) Rate(item Item, rating int) error {
	if !p.HasBorrowed(item) {
		return p.notBorrowed("rating", item)
	}

	e := newEvent(EventItemRated, p).withItem(item)
	e.Rating = rating
	p.recorder.Record(e)
	return nil
}

// PayFine appends amount to the payment history.
// Returns ErrInvalidAmount for a negative amount.
func (p *Patron) PayFine(amount Amount) error {
	if amount < 0 {
		return errors.Wrapf(ErrInvalidAmount, "%s paying %d", p.name, int64(amount))
	}

	p.mu.Lock()
	p.payments = append(p.payments, amount)
	p.mu.Unlock()

	e := newEvent(EventFinePaid, p)
	e.Amount = amount
	p.recorder.Record(e)
	return nil
}

func (p *Patron) notBorrowed(action string, item Item) error {
	title := "<nil>"
	if isCatalogItem(item) {
		title = item.Title()
	}
	return errors.Wrapf(ErrItemNotBorrowed, "%s %s %q", p.name, action, title)
}

func (p *Patron) String() string {
	return fmt.Sprintf("%s, %d years old (Customer ID: %s)", p.name, p.age, p.id)
}
