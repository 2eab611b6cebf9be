package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtgproxy/proxygen/internal/cardcache"
	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/storage"
)

// newParseServer fakes the proxygen parse endpoint: it resolves every
// requested line whose name appears in known, echoing the canonical casing.
func newParseServer(t *testing.T, known map[string]string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.URL.Path != "/api/cards/parse" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		var resolved []cards.ResolvedCard
		for _, line := range strings.Split(req.Text, "\n") {
			name := strings.TrimPrefix(line, "1 ")
			if canonical, ok := known[strings.ToLower(name)]; ok {
				resolved = append(resolved, cards.ResolvedCard{
					Card:     cards.Card{Name: canonical},
					Quantity: 1,
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resolved)
	}))
}

func newTestClient(serverURL string) *Client {
	cache := cardcache.New(storage.NewMemoryStore(), nil)
	return New(serverURL, cache, nil)
}

func TestResolve_FetchesAndReassembles(t *testing.T) {
	var calls atomic.Int32
	server := newParseServer(t, map[string]string{
		"lightning bolt": "Lightning Bolt",
		"path to exile":  "Path to Exile",
	}, &calls)
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.Resolve(context.Background(), "4 Lightning Bolt\n2 Path to Exile")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(result.Cards))
	}
	if result.Cards[0].Name != "Lightning Bolt" || result.Cards[0].Quantity != 4 {
		t.Errorf("First card = %+v, want Lightning Bolt x4", result.Cards[0])
	}
	if result.Cards[1].Name != "Path to Exile" || result.Cards[1].Quantity != 2 {
		t.Errorf("Second card = %+v, want Path to Exile x2", result.Cards[1])
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", result.Unresolved)
	}
}

func TestResolve_SecondSubmissionServedFromCache(t *testing.T) {
	var calls atomic.Int32
	server := newParseServer(t, map[string]string{"lightning bolt": "Lightning Bolt"}, &calls)
	defer server.Close()

	c := newTestClient(server.URL)

	if _, err := c.Resolve(context.Background(), "4 Lightning Bolt"); err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	result, err := c.Resolve(context.Background(), "2 Lightning Bolt")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("Expected second submission to skip the server, got %d calls", calls.Load())
	}
	if len(result.Cards) != 1 || result.Cards[0].Quantity != 2 {
		t.Errorf("Cards = %v, want Lightning Bolt x2", result.Cards)
	}
}

func TestResolve_OnlyUncachedNamesSent(t *testing.T) {
	var calls atomic.Int32
	var sentText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		sentText = req.Text

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]cards.ResolvedCard{
			{Card: cards.Card{Name: "Path to Exile"}, Quantity: 1},
		})
	}))
	defer server.Close()

	cache := cardcache.New(storage.NewMemoryStore(), nil)
	cache.Put([]cards.ResolvedCard{{Card: cards.Card{Name: "Lightning Bolt"}, Quantity: 1}})

	c := New(server.URL, cache, nil)
	result, err := c.Resolve(context.Background(), "4 Lightning Bolt\n1 Path to Exile")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if sentText != "1 path to exile" {
		t.Errorf("Server received %q, want only the uncached name", sentText)
	}
	if len(result.Cards) != 2 {
		t.Errorf("Expected both cards resolved, got %d", len(result.Cards))
	}
}

func TestResolve_UnresolvedNamesReported(t *testing.T) {
	var calls atomic.Int32
	server := newParseServer(t, map[string]string{"bolt": "Bolt"}, &calls)
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.Resolve(context.Background(), "4 Bolt\n2 Gibberish Card")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.Cards) != 1 {
		t.Errorf("Expected 1 card, got %d", len(result.Cards))
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != "gibberish card" {
		t.Errorf("Unresolved = %v, want [gibberish card]", result.Unresolved)
	}
}

func TestResolve_NoEntries(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")

	_, err := c.Resolve(context.Background(), "// nothing here")
	if !errors.Is(err, ErrNoEntries) {
		t.Errorf("Expected ErrNoEntries, got %v", err)
	}
}

func TestResolve_ServerErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No valid card entries found in decklist.","code":400}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Resolve(context.Background(), "4 Bolt")
	if err == nil || err.Error() != "No valid card entries found in decklist." {
		t.Errorf("Expected server error message, got %v", err)
	}
}

func TestSubmitter_LatestSubmissionWins(t *testing.T) {
	release := make(chan struct{})
	var delivered atomic.Int32
	var lastText atomic.Value

	resolve := func(ctx context.Context, text string) (*Result, error) {
		if text == "1 Slow" {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return &Result{Cards: []cards.ResolvedCard{{Card: cards.Card{Name: text}}}}, nil
	}

	done := make(chan struct{}, 2)
	s := NewSubmitter(resolve, func(r *Result, err error) {
		if err == nil {
			delivered.Add(1)
			lastText.Store(r.Cards[0].Name)
		}
		done <- struct{}{}
	})

	s.Submit("1 Slow")
	s.Submit("1 Fast")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for delivery")
	}
	close(release)
	s.Close()

	if delivered.Load() != 1 {
		t.Errorf("Expected exactly 1 delivery, got %d", delivered.Load())
	}
	if got := lastText.Load(); got != "1 Fast" {
		t.Errorf("Delivered %v, want the superseding submission", got)
	}
}

func TestSubmitter_CanceledRunIsSilent(t *testing.T) {
	started := make(chan struct{})
	resolve := func(ctx context.Context, text string) (*Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	var deliveries atomic.Int32
	s := NewSubmitter(resolve, func(*Result, error) {
		deliveries.Add(1)
	})

	s.Submit("1 Bolt")
	<-started
	s.Close()

	if deliveries.Load() != 0 {
		t.Errorf("Expected canceled run to deliver nothing, got %d deliveries", deliveries.Load())
	}
}
