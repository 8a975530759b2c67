package library

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeFine(t *testing.T) {
	book := NewPhysicalBook("1984", "George Orwell", "123456789", "Dystopian")
	ebook := NewElectronicBook("Digital Fortress", "Dan Brown", "1122334455", "Thriller", 5)

	tests := []struct {
		name  string
		rate  Amount
		days  int
		items []Item
		want  Amount
	}{
		{name: "three days two items", days: 3, items: []Item{book, ebook}, want: 6},
		{name: "no overdue days", days: 0, items: []Item{book, ebook}, want: 0},
		{name: "negative days", days: -2, items: []Item{book}, want: 0},
		{name: "no items", days: 5, items: nil, want: 0},
		{name: "one day one item", days: 1, items: []Item{book}, want: 1},
		{name: "custom rate", rate: 2, days: 4, items: []Item{book, ebook}, want: 16},
		{name: "saturates on overflow", days: math.MaxInt64, items: []Item{book, ebook}, want: math.MaxInt64},
		{name: "saturates on rate overflow", rate: math.MaxInt64, days: 2, items: []Item{book}, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBillingCalculator(tt.rate)
			assert.Equal(t, tt.want, b.ComputeFine(tt.days, tt.items))
		})
	}
}

func TestFineFor(t *testing.T) {
	b := NewBillingCalculator(2)
	assert.Equal(t, Amount(60), b.FineFor(3, 10))
	assert.Zero(t, b.FineFor(3, 0))
	assert.Zero(t, b.FineFor(0, 10))
	assert.Equal(t, Amount(math.MaxInt64), b.FineFor(math.MaxInt64/2, math.MaxInt64))
}

func TestComputeFineIsDaysTimesCount(t *testing.T) {
	var b BillingCalculator
	items := []Item{}
	for n := 1; n <= 5; n++ {
		items = append(items, NewPhysicalBook("t", "a", "c", "g"))
		for d := 1; d <= 30; d++ {
			assert.Equal(t, Amount(d*n), b.ComputeFine(d, items))
		}
		assert.Zero(t, b.ComputeFine(0, items))
	}
}

func TestComputeFineDoesNotRecordPayment(t *testing.T) {
	p := NewPatron("John Doe", 30, "C001")
	var b BillingCalculator
	inv := b.GenerateInvoice(p, []Item{NewPhysicalBook("1984", "George Orwell", "1", "d")}, 3)

	assert.Equal(t, Amount(3), inv.Total)
	assert.Empty(t, p.PaymentHistory())
	assert.Equal(t, "Invoice for John Doe: Total Fine = 3 USD", inv.String())
}

func TestDailyRateDefaults(t *testing.T) {
	assert.Equal(t, DefaultDailyRate, BillingCalculator{}.DailyRate())
	assert.Equal(t, DefaultDailyRate, NewBillingCalculator(-4).DailyRate())
	assert.Equal(t, Amount(3), NewBillingCalculator(3).DailyRate())
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		hours float64
		want  int
	}{
		{-5, 0},
		{0, 0},
		{0.1, 1},
		{1, 1},
		{24, 1},
		{24.5, 2},
		{48, 2},
		{176, 8},
	}
	for _, tt := range tests {
		returned := due.Add(time.Duration(tt.hours * float64(time.Hour)))
		assert.Equal(t, tt.want, OverdueDays(due, returned), "hours=%v", tt.hours)
	}
}
