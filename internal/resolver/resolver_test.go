package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mtgproxy/proxygen/internal/cardcache"
	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/storage"
)

// fakeLookup resolves from a fixed map and records every call it receives.
type fakeLookup struct {
	known map[string]cards.Card
	calls [][]string

	// beforeReturn runs just before results are returned, letting tests
	// cancel the context mid-flight.
	beforeReturn func()
}

func (f *fakeLookup) GetCardsByNames(ctx context.Context, names []string) (map[string]cards.Card, error) {
	f.calls = append(f.calls, append([]string(nil), names...))

	results := make(map[string]cards.Card)
	for _, name := range names {
		if card, ok := f.known[strings.ToLower(name)]; ok {
			results[strings.ToLower(card.Name)] = card
		}
	}
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
	return results, nil
}

func knownCards(names ...string) map[string]cards.Card {
	known := make(map[string]cards.Card)
	for _, name := range names {
		known[strings.ToLower(name)] = cards.Card{Name: name}
	}
	return known
}

func newTestResolver(lookup Lookup) (*Resolver, *cardcache.Cache) {
	cache := cardcache.New(storage.NewMemoryStore(), nil)
	return New(cache, lookup, nil), cache
}

func TestResolve_EmptyDecklist(t *testing.T) {
	r, _ := newTestResolver(&fakeLookup{})

	for _, text := range []string{"", "   \n\n", "// just a comment"} {
		_, err := r.Resolve(context.Background(), text)
		if !errors.Is(err, ErrEmptyDecklist) {
			t.Errorf("Resolve(%q) error = %v, want ErrEmptyDecklist", text, err)
		}
	}
}

func TestResolve_DeduplicatesLookups(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Bolt", "Path")}
	r, _ := newTestResolver(lookup)

	result, err := r.Resolve(context.Background(), "4 Bolt\n2 Bolt\n1 Path")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(lookup.calls) != 1 {
		t.Fatalf("Expected exactly 1 lookup call, got %d", len(lookup.calls))
	}
	if got := lookup.calls[0]; len(got) != 2 {
		t.Errorf("Expected 2 distinct names sent to lookup, got %v", got)
	}

	// Duplicates still appear as separate resolved entries.
	if len(result.Cards) != 3 {
		t.Fatalf("Expected 3 resolved entries, got %d", len(result.Cards))
	}
	quantities := []int{result.Cards[0].Quantity, result.Cards[1].Quantity, result.Cards[2].Quantity}
	if quantities[0] != 4 || quantities[1] != 2 || quantities[2] != 1 {
		t.Errorf("Quantities = %v, want [4 2 1]", quantities)
	}
}

func TestResolve_PreservesEntryOrder(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("C", "A", "B")}
	r, _ := newTestResolver(lookup)

	result, err := r.Resolve(context.Background(), "1 C\n1 A\n1 B")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var names []string
	for _, c := range result.Cards {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "C,A,B" {
		t.Errorf("Order = %v, want [C A B]", names)
	}
}

func TestResolve_OmitsMissesAndReportsUnresolved(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Bolt")}
	r, _ := newTestResolver(lookup)

	result, err := r.Resolve(context.Background(), "4 Bolt\n2 Missing")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.Cards) != 1 || result.Cards[0].Name != "Bolt" {
		t.Errorf("Cards = %v, want just Bolt", result.Cards)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != "Missing" {
		t.Errorf("Unresolved = %v, want [Missing]", result.Unresolved)
	}
}

func TestResolve_SecondRunHitsCacheOnly(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Lightning Bolt")}
	r, _ := newTestResolver(lookup)

	first, err := r.Resolve(context.Background(), "4 Lightning Bolt")
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	second, err := r.Resolve(context.Background(), "4 Lightning Bolt")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if len(lookup.calls) != 1 {
		t.Errorf("Expected second run to perform zero remote calls, got %d total", len(lookup.calls))
	}
	if len(first.Cards) != 1 || len(second.Cards) != 1 {
		t.Fatalf("Expected one card from each run")
	}
	if first.Cards[0] != second.Cards[0] {
		t.Errorf("Runs disagree: %+v vs %+v", first.Cards[0], second.Cards[0])
	}
}

func TestResolve_CacheHitsSkipLookupEntirely(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Bolt")}
	r, cache := newTestResolver(lookup)

	cache.Put([]cards.ResolvedCard{{Card: cards.Card{Name: "Bolt"}, Quantity: 1}})

	result, err := r.Resolve(context.Background(), "4 Bolt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(lookup.calls) != 0 {
		t.Errorf("Expected no lookup calls for a full cache hit, got %d", len(lookup.calls))
	}
	if len(result.Cards) != 1 || result.Cards[0].Quantity != 4 {
		t.Errorf("Cards = %v, want Bolt x4", result.Cards)
	}
}

func TestResolve_CanonicalCasingFromSource(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Lightning Bolt")}
	r, _ := newTestResolver(lookup)

	result, err := r.Resolve(context.Background(), "4 lightning bolt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(result.Cards) != 1 || result.Cards[0].Name != "Lightning Bolt" {
		t.Errorf("Expected canonical casing from the data source, got %v", result.Cards)
	}
}

func TestResolve_CancellationSkipsCacheWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lookup := &fakeLookup{known: knownCards("Bolt"), beforeReturn: cancel}
	store := storage.NewMemoryStore()
	cache := cardcache.New(store, nil)
	r := New(cache, lookup, nil)

	_, err := r.Resolve(ctx, "4 Bolt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	if _, ok, _ := store.Get(cardcache.StorageKey); ok {
		t.Error("Expected no cache write after cancellation")
	}
}

func TestResolve_WorksWithoutCache(t *testing.T) {
	lookup := &fakeLookup{known: knownCards("Bolt")}
	r := New(nil, lookup, nil)

	result, err := r.Resolve(context.Background(), "4 Bolt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(result.Cards) != 1 {
		t.Errorf("Expected 1 card, got %d", len(result.Cards))
	}
}
