package library

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// ItemKind names a catalog item variant.
type ItemKind string

// Item kinds. The set is closed: every Item is one of these.
const (
	KindPhysicalBook   ItemKind = "book"
	KindElectronicBook ItemKind = "ebook"
)

var validItemKinds = map[ItemKind]bool{
	KindPhysicalBook:   true,
	KindElectronicBook: true,
}

// ParseItemKind converts s to an ItemKind.
// Returns ErrUnknownItemKind if s does not name a known variant.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(s)
	if !validItemKinds[k] {
		return "", errors.Wrapf(ErrUnknownItemKind, "%q", s)
	}
	return k, nil
}

// Amount is a money value in whole currency units (USD in all output).
type Amount int64

func (a Amount) String() string { return fmt.Sprintf("%d USD", int64(a)) }

// Item is a catalog entry. Only the variants in this package implement it.
type Item interface {
	Title() string
	Author() string
	CatalogNumber() string
	Category() string
	Kind() ItemKind
	// Details returns the variant-specific description used in listings.
	Details() string

	catalogItem()
}

// entry holds the fields shared by every variant. Fields are set once by the
// constructors and never modified.
type entry struct {
	title         string
	author        string
	catalogNumber string
	category      string
}

func (e *entry) Title() string         { return e.title }
func (e *entry) Author() string        { return e.author }
func (e *entry) CatalogNumber() string { return e.catalogNumber }
func (e *entry) Category() string      { return e.category }
func (e *entry) catalogItem()          {}

// PhysicalBook is a printed book.
type PhysicalBook struct {
	entry
}

// NewPhysicalBook returns a book with the given metadata. No field is validated.
func NewPhysicalBook(title, author, catalogNumber, category string) *PhysicalBook {
	return &PhysicalBook{entry{
		title:         title,
		author:        author,
		catalogNumber: catalogNumber,
		category:      category,
	}}
}

func (b *PhysicalBook) Kind() ItemKind { return KindPhysicalBook }

func (b *PhysicalBook) Details() string {
	return fmt.Sprintf("Book: %s by %s, ISBN: %s, Category: %s", b.title, b.author, b.catalogNumber, b.category)
}

func (b *PhysicalBook) String() string {
	return fmt.Sprintf("Book: %s by %s", b.title, b.author)
}

// ElectronicBook is a downloadable book with a file size in megabytes.
type ElectronicBook struct {
	entry
	fileSizeMB float64
}

// NewElectronicBook returns an ebook with the given metadata. No field is validated.
func NewElectronicBook(title, author, catalogNumber, category string, fileSizeMB float64) *ElectronicBook {
	return &ElectronicBook{
		entry: entry{
			title:         title,
			author:        author,
			catalogNumber: catalogNumber,
			category:      category,
		},
		fileSizeMB: fileSizeMB,
	}
}

func (b *ElectronicBook) Kind() ItemKind { return KindElectronicBook }

// FileSizeMB returns the file size in megabytes.
func (b *ElectronicBook) FileSizeMB() float64 { return b.fileSizeMB }

func (b *ElectronicBook) Details() string {
	return fmt.Sprintf("EBook: %s by %s, ISBN: %s, Category: %s, File Size: %sMB",
		b.title, b.author, b.catalogNumber, b.category, formatSize(b.fileSizeMB))
}

func (b *ElectronicBook) String() string {
	return fmt.Sprintf("EBook: %s by %s", b.title, b.author)
}

// formatSize prints a size in its shortest form: 5 -> "5", 1.5 -> "1.5".
func formatSize(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}

// isCatalogItem reports whether item is a non-nil known variant.
func isCatalogItem(item Item) bool {
	switch v := item.(type) {
	case *PhysicalBook:
		return v != nil
	case *ElectronicBook:
		return v != nil
	default:
		return false
	}
}
