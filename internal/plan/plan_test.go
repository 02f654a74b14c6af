package plan

import "testing"

func TestResolveKnownProduct(t *testing.T) {
	id, ok := Resolve("modulyn-one-plus")
	if !ok || id != "modulyn-one-plus" {
		t.Fatalf("expected modulyn-one-plus, got %q ok=%v", id, ok)
	}
}

func TestResolveUnknownProductFallsBack(t *testing.T) {
	id, ok := Resolve("some-legacy-sku")
	if ok {
		t.Fatalf("unknown product must not resolve")
	}
	if id != DefaultPlanID {
		t.Fatalf("expected default plan, got %q", id)
	}
}

func TestListCopies(t *testing.T) {
	plans := List()
	if len(plans) == 0 {
		t.Fatal("catalog must not be empty")
	}
	plans[0].ID = "mutated"
	if List()[0].ID == "mutated" {
		t.Fatal("List must return a copy")
	}
}
