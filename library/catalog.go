package library

import (
	"slices"
	"sync"
)

// Catalog is the registry of every known item and branch. It records existence,
// not physical location; see Branch for that.
//
// A Catalog is created once by the top-level caller and passed to whatever
// needs it. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	items    []Item
	branches []*Branch
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// RegisterItem appends item to the registry.
func (c *Catalog) RegisterItem(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Items returns the registered items in registration order.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// RegisterBranch appends branch to the registry.
func (c *Catalog) RegisterBranch(branch *Branch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.branches = append(c.branches, branch)
}

// Branches returns the registered branches in registration order.
func (c *Catalog) Branches() []*Branch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.branches)
}

// Branch returns the first registered branch named name, or nil.
func (c *Catalog) Branch(name string) *Branch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.branches {
		if b.name == name {
			return b
		}
	}
	return nil
}

// ItemCount returns the number of registered items.
func (c *Catalog) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
