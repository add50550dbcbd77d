package status_test

import (
	"testing"

	"github.com/teamsuite/workflow-core/internal/domain/status"
)

// Entries arrive unordered; the catalog must order by OrderIndex, not
// insertion or ID order.
func testCatalog() status.Catalog {
	return status.NewCatalog([]status.Status{
		{ID: 7, Name: "Done", OrderIndex: 3},
		{ID: 3, Name: "To Do", OrderIndex: 0},
		{ID: 5, Name: "In Progress", OrderIndex: 1},
		{ID: 6, Name: "In Review", OrderIndex: 2},
	})
}

func TestCatalog_Default(t *testing.T) {
	t.Parallel()

	def, ok := testCatalog().Default()
	if !ok {
		t.Fatal("Default() ok = false, want true")
	}
	if def.Name != "To Do" || def.ID != 3 {
		t.Errorf("Default() = %+v, want To Do (id 3)", def)
	}
}

func TestCatalog_Done(t *testing.T) {
	t.Parallel()

	done, ok := testCatalog().Done()
	if !ok {
		t.Fatal("Done() ok = false, want true")
	}
	if done.Name != "Done" || done.ID != 7 {
		t.Errorf("Done() = %+v, want Done (id 7)", done)
	}
}

func TestCatalog_ByID(t *testing.T) {
	t.Parallel()

	c := testCatalog()

	st, ok := c.ByID(5)
	if !ok || st.Name != "In Progress" {
		t.Errorf("ByID(5) = %+v, %v; want In Progress, true", st, ok)
	}

	if _, ok := c.ByID(99); ok {
		t.Error("ByID(99) ok = true, want false")
	}
}

func TestCatalog_Empty(t *testing.T) {
	t.Parallel()

	var c status.Catalog

	if _, ok := c.Default(); ok {
		t.Error("Default() on empty catalog ok = true, want false")
	}
	if _, ok := c.Done(); ok {
		t.Error("Done() on empty catalog ok = true, want false")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
