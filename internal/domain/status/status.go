// Package status models the shared issue status catalog. The catalog is
// seeded and owned by an external administration flow; the workflow core
// references entries by ID and never mutates them.
package status

import "sort"

// Status is a single entry in the ordered status catalog (e.g. "To Do",
// "In Progress", "Done").
type Status struct {
	ID         int64
	Name       string
	OrderIndex int
}

// Catalog is an ordered, read-only view over the status entries of the
// shared catalog. The zero value is empty.
type Catalog struct {
	entries []Status
}

// NewCatalog builds a catalog from the given entries, ordered by OrderIndex.
// The input slice is copied.
func NewCatalog(entries []Status) Catalog {
	sorted := make([]Status, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})
	return Catalog{entries: sorted}
}

// Len returns the number of catalog entries.
func (c Catalog) Len() int {
	return len(c.entries)
}

// Default returns the entry with the lowest order index, used as the status
// for newly created issues. ok is false when the catalog is empty.
func (c Catalog) Default() (Status, bool) {
	if len(c.entries) == 0 {
		return Status{}, false
	}
	return c.entries[0], true
}

// Done returns the terminal entry with the highest order index. An issue in
// this status is never considered overdue. ok is false when the catalog is
// empty.
func (c Catalog) Done() (Status, bool) {
	if len(c.entries) == 0 {
		return Status{}, false
	}
	return c.entries[len(c.entries)-1], true
}

// ByID looks up an entry by its identifier.
func (c Catalog) ByID(id int64) (Status, bool) {
	for _, s := range c.entries {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}
