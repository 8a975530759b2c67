package library

import (
	"fmt"
	"slices"
	"sync"
)

// Branch is a named location holding the items physically present there.
type Branch struct {
	name     string
	location string

	mu    sync.Mutex
	items []Item
}

// NewBranch returns an empty branch.
func NewBranch(name, location string) *Branch {
	return &Branch{name: name, location: location}
}

func (b *Branch) Name() string     { return b.name }
func (b *Branch) Location() string { return b.location }

// AddItem appends item to the branch. Duplicates are allowed.
func (b *Branch) AddItem(item Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, item)
}

// Items returns a snapshot of the branch's items in insertion order.
// Mutating the returned slice does not affect the branch.
func (b *Branch) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Holds reports whether item is currently present in the branch.
func (b *Branch) Holds(item Item) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.items, item)
}

// removeItem drops the first occurrence of item and reports whether one was found.
func (b *Branch) removeItem(item Item) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.items, item)
	if i < 0 {
		return false
	}
	b.items = slices.Delete(b.items, i, i+1)
	return true
}

func (b *Branch) String() string {
	return fmt.Sprintf("Branch: %s - %s", b.name, b.location)
}
