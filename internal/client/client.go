// Package client is the request-issuing side of the pipeline: it parses
// decklists locally, serves what it can from the local card cache, and asks
// the proxygen server only for the rest.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mtgproxy/proxygen/internal/cardcache"
	"github.com/mtgproxy/proxygen/internal/cards"
)

// ErrNoEntries reports that the submitted text parsed to zero entries.
var ErrNoEntries = errors.New("no valid card entries found in decklist")

// Result is a resolved submission as seen by this layer.
type Result struct {
	Cards      []cards.ResolvedCard
	Unresolved []string
}

// Client resolves decklists against a proxygen server, pre-filtering cache
// hits so cached cards never cost a round trip.
type Client struct {
	serverURL  string
	httpClient *http.Client
	cache      *cardcache.Cache
	logger     *slog.Logger
}

// New creates a client for the given server. cache may be nil to disable
// local caching.
func New(serverURL string, cache *cardcache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

// Resolve parses text locally, fills what it can from the cache, fetches
// the remaining names from the server, and reassembles the cards in entry
// order with their quantities. Unlike the server-side pipeline, a failed
// server request is an error here: the user asked for cards and got none.
func (c *Client) Resolve(ctx context.Context, text string) (*Result, error) {
	entries := ParseDecklist(text)
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	// Distinct lowercased names double as lookup keys and as the lines
	// sent to the server.
	seen := make(map[string]bool)
	var distinct []string
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, key)
		}
	}

	resolved := make(map[string]cards.Card)
	if c.cache != nil {
		for key, card := range c.cache.GetMany(distinct) {
			resolved[key] = card
		}
	}

	var uncached []string
	for _, name := range distinct {
		if _, ok := resolved[name]; !ok {
			uncached = append(uncached, name)
		}
	}

	if len(uncached) > 0 {
		fetched, err := c.fetchFromServer(ctx, uncached)
		if err != nil {
			return nil, err
		}
		// A superseded submission must not touch the cache.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.cache != nil {
			c.cache.Put(fetched)
		}
		for _, card := range fetched {
			resolved[strings.ToLower(card.Name)] = card.Card
		}
	}

	result := &Result{}
	for _, e := range entries {
		card, ok := resolved[strings.ToLower(e.Name)]
		if !ok {
			continue
		}
		result.Cards = append(result.Cards, cards.ResolvedCard{Card: card, Quantity: e.Quantity})
	}
	for _, name := range distinct {
		if _, ok := resolved[name]; !ok {
			result.Unresolved = append(result.Unresolved, name)
		}
	}

	return result, nil
}

// fetchFromServer asks the parse endpoint for the given names, synthesized
// as single-copy lines.
func (c *Client) fetchFromServer(ctx context.Context, names []string) ([]cards.ResolvedCard, error) {
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = "1 " + name
	}

	body, err := json.Marshal(map[string]string{"text": strings.Join(lines, "\n")})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.serverURL + "/api/cards/parse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request cards: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(serverErrorMessage(resp))
	}

	var fetched []cards.ResolvedCard
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return fetched, nil
}

// serverErrorMessage extracts the server's error message, falling back to
// the status code.
func serverErrorMessage(resp *http.Response) string {
	fallback := fmt.Sprintf("request failed (%d)", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fallback
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return fallback
	}
	return payload.Error
}
