package library

import "iter"

// NoItemsAvailable is the single line listed for an empty catalog.
const NoItemsAvailable = "No items available."

// CatalogReporter presents a read-only view of a Catalog.
type CatalogReporter struct {
	catalog *Catalog
}

func NewCatalogReporter(catalog *Catalog) *CatalogReporter {
	return &CatalogReporter{catalog: catalog}
}

// ListItems yields the details of every registered item in registration order.
// An empty catalog yields NoItemsAvailable once. Items registered after the
// sequence starts are not included.
func (r *CatalogReporter) ListItems() iter.Seq[string] {
	return func(yield func(string) bool) {
		items := r.catalog.Items()
		if len(items) == 0 {
			yield(NoItemsAvailable)
			return
		}
		for _, item := range items {
			if !yield(item.Details()) {
				return
			}
		}
	}
}

// CountItems returns the number of registered items.
func (r *CatalogReporter) CountItems() int {
	return r.catalog.ItemCount()
}
