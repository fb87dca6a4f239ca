package pulse

import "testing"

func newTestGroup() *Group {
	g := NewGroup("alpha")
	g.Records = []*Record{
		{ID: "c", Integral: Available(3)},
		{ID: "a", Integral: Available(1)},
		{ID: "b"},
	}
	return g
}

func TestGroupIndexAndSort(t *testing.T) {
	g := newTestGroup()

	idx := g.Index()
	if len(idx) != 3 || idx["a"].Integral.Value != 1 {
		t.Fatalf("Index() = %v", idx)
	}

	g.SortByID()
	for i, id := range []string{"a", "b", "c"} {
		if g.Records[i].ID != id {
			t.Fatalf("record %d = %q, want %q", i, g.Records[i].ID, id)
		}
	}
}

func TestGroupRetain(t *testing.T) {
	g := newTestGroup()

	removed := g.Retain(func(r *Record) bool { return r.Integral.OK })
	if removed != 1 || g.Len() != 2 {
		t.Fatalf("removed %d, len %d; want 1, 2", removed, g.Len())
	}
	if g.Records[0].ID != "c" || g.Records[1].ID != "a" {
		t.Fatal("Retain changed record order")
	}
}

func TestGroupScalars(t *testing.T) {
	values, owners, err := newTestGroup().Scalars(FieldIntegral)
	if err != nil {
		t.Fatalf("Scalars: %v", err)
	}
	if len(values) != 2 || values[0] != 3 || owners[1].ID != "a" {
		t.Fatalf("Scalars = %v", values)
	}

	if _, _, err := newTestGroup().Scalars("bogus"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
