package library

import (
	"fmt"
	"math"
	"time"
)

// DefaultDailyRate is the fine charged per overdue day per item.
const DefaultDailyRate Amount = 1

// BillingCalculator computes overdue fines at a flat daily rate per item.
// The zero value charges DefaultDailyRate.
type BillingCalculator struct {
	dailyRate Amount
}

// NewBillingCalculator returns a calculator charging dailyRate per overdue day
// per item. A rate of zero or less falls back to DefaultDailyRate.
func NewBillingCalculator(dailyRate Amount) BillingCalculator {
	return BillingCalculator{dailyRate: dailyRate}
}

// DailyRate returns the rate in effect.
func (b BillingCalculator) DailyRate() Amount {
	if b.dailyRate <= 0 {
		return DefaultDailyRate
	}
	return b.dailyRate
}

// ComputeFine returns overdueDays × rate × len(items), or 0 when nothing is
// overdue. It does not record anything; pass the result to Patron.PayFine to
// do that.
func (b BillingCalculator) ComputeFine(overdueDays int, items []Item) Amount {
	return b.FineFor(overdueDays, len(items))
}

// FineFor is ComputeFine for itemCount items. Results that do not fit in an
// Amount saturate at math.MaxInt64.
func (b BillingCalculator) FineFor(overdueDays, itemCount int) Amount {
	if overdueDays <= 0 || itemCount <= 0 {
		return 0
	}
	perItem := saturatingMul(Amount(overdueDays), b.DailyRate())
	return saturatingMul(perItem, Amount(itemCount))
}

// saturatingMul multiplies two positive amounts, capping at math.MaxInt64.
func saturatingMul(a, b Amount) Amount {
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// Invoice is the fine owed by a patron for a set of overdue items.
type Invoice struct {
	PatronName  string `json:"patron_name"`
	PatronID    string `json:"patron_id"`
	ItemCount   int    `json:"item_count"`
	OverdueDays int    `json:"overdue_days"`
	Total       Amount `json:"total"`
}

func (i Invoice) String() string {
	return fmt.Sprintf("Invoice for %s: Total Fine = %s", i.PatronName, i.Total)
}

// GenerateInvoice computes the fine for items held overdueDays past due by patron.
func (b BillingCalculator) GenerateInvoice(patron *Patron, items []Item, overdueDays int) Invoice {
	return Invoice{
		PatronName:  patron.Name(),
		PatronID:    patron.ID(),
		ItemCount:   len(items),
		OverdueDays: overdueDays,
		Total:       b.ComputeFine(overdueDays, items),
	}
}

// OverdueDays counts started days between due and returned. Any part of a day
// counts as a whole day; returning on or before due yields 0.
func OverdueDays(due, returned time.Time) int {
	late := returned.Sub(due)
	if late <= 0 {
		return 0
	}
	return int(math.Ceil(late.Hours() / 24))
}
