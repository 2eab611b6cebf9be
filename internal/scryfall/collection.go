package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mtgproxy/proxygen/internal/cards"
)

// MaxBatchSize is the maximum number of identifiers per collection request
// (Scryfall limit is 75).
const MaxBatchSize = 75

// CardIdentifier identifies one card for the /cards/collection endpoint.
type CardIdentifier struct {
	Name string `json:"name"`
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

// CollectionResponse is the response from /cards/collection.
type CollectionResponse struct {
	Object   string           `json:"object"`
	NotFound []CardIdentifier `json:"not_found"`
	Data     []Card           `json:"data"`
}

// GetCardsByNames resolves card names through the batch /cards/collection
// endpoint and returns records keyed by lowercased name. Names the API does
// not recognize are simply absent from the result; they are logged, never
// surfaced as errors.
//
// Lookups are best-effort per batch: a batch that fails at the transport
// level (network error, non-2xx status, malformed body) contributes nothing
// while the remaining batches still count. The only returned error is
// context cancellation, which aborts the whole run.
func (c *Client) GetCardsByNames(ctx context.Context, names []string) (map[string]cards.Card, error) {
	results := make(map[string]cards.Card)
	if len(names) == 0 {
		return results, nil
	}

	// Process in consecutive batches of MaxBatchSize (75)
	for i := 0; i < len(names); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(names) {
			end = len(names)
		}
		batch := names[i:end]

		resp, err := c.fetchCollectionBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("card lookup batch failed", "from", i, "to", end, "error", err)
			continue
		}

		for _, card := range resp.Data {
			// A record without a name cannot be keyed.
			if card.Name == "" {
				continue
			}
			results[strings.ToLower(card.Name)] = card.Record()
		}
		for _, id := range resp.NotFound {
			if id.Name != "" {
				c.logger.Warn("card not found on Scryfall", "name", id.Name)
			}
		}
	}

	return results, nil
}

// fetchCollectionBatch performs a single POST to /cards/collection.
func (c *Client) fetchCollectionBatch(ctx context.Context, names []string) (*CollectionResponse, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	identifiers := make([]CardIdentifier, len(names))
	for i, name := range names {
		identifiers[i] = CardIdentifier{Name: name}
	}

	jsonBody, err := json.Marshal(CollectionRequest{Identifiers: identifiers})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/cards/collection"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards from Scryfall: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scryfall API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var collectionResp CollectionResponse
	if err := json.Unmarshal(body, &collectionResp); err != nil {
		return nil, fmt.Errorf("failed to parse Scryfall response: %w", err)
	}

	return &collectionResp, nil
}
