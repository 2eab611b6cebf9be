package cards

import "testing"

func resolved(name string, qty int) ResolvedCard {
	return ResolvedCard{Card: Card{Name: name}, Quantity: qty}
}

func TestExpand_ReplicatesByQuantity(t *testing.T) {
	out := Expand([]ResolvedCard{resolved("Lightning Bolt", 4)})

	if len(out) != 4 {
		t.Fatalf("Expected 4 copies, got %d", len(out))
	}
	for _, c := range out {
		if c.Name != "Lightning Bolt" {
			t.Errorf("Expected name Lightning Bolt, got %s", c.Name)
		}
	}
}

func TestExpand_ClampsQuantityPerCard(t *testing.T) {
	out := Expand([]ResolvedCard{resolved("Mountain", 999999)})

	if len(out) != MaxQuantity {
		t.Errorf("Expected quantity clamped to %d, got %d", MaxQuantity, len(out))
	}
}

func TestExpand_NegativeQuantityYieldsNoCopies(t *testing.T) {
	out := Expand([]ResolvedCard{resolved("Island", -3)})

	if len(out) != 0 {
		t.Errorf("Expected 0 copies for negative quantity, got %d", len(out))
	}
}

func TestExpand_TruncatesAtTotalCap(t *testing.T) {
	// 20 cards at MaxQuantity would be 2000 units without the global cap.
	input := make([]ResolvedCard, 20)
	for i := range input {
		input[i] = resolved("Relentless Rats", MaxQuantity)
	}

	out := Expand(input)

	if len(out) != MaxTotalCards {
		t.Errorf("Expected exactly %d units, got %d", MaxTotalCards, len(out))
	}
}

func TestExpand_KeysUniqueAcrossSameNamedSources(t *testing.T) {
	// Two distinct source entries with the same display name must not
	// collide.
	out := Expand([]ResolvedCard{
		resolved("Plains", 2),
		resolved("Plains", 2),
	})

	if len(out) != 4 {
		t.Fatalf("Expected 4 copies, got %d", len(out))
	}

	seen := make(map[string]bool)
	for _, c := range out {
		if seen[c.Key] {
			t.Errorf("Duplicate key %q", c.Key)
		}
		seen[c.Key] = true
	}
}

func TestExpand_DoesNotMutateInput(t *testing.T) {
	input := []ResolvedCard{resolved("Forest", 3)}
	_ = Expand(input)

	if input[0].Quantity != 3 {
		t.Errorf("Expected input untouched, quantity is %d", input[0].Quantity)
	}
}
