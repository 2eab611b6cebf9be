// Package resolver turns raw decklist text into resolved card records,
// consulting the cache before the remote lookup and re-attaching quantities
// in submission order.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/decklist"
)

// ErrEmptyDecklist reports that the submitted text parsed to zero entries.
// It is the one fatal, user-visible validation failure in the pipeline.
var ErrEmptyDecklist = errors.New("no valid card entries found in decklist")

// Lookup resolves distinct card names against the remote card database.
type Lookup interface {
	GetCardsByNames(ctx context.Context, names []string) (map[string]cards.Card, error)
}

// Cache serves previously resolved records and stores fresh ones.
type Cache interface {
	GetMany(names []string) map[string]cards.Card
	Put(resolved []cards.ResolvedCard)
}

// Result is a resolved submission: the cards in original entry order plus
// the distinct names nothing could resolve.
type Result struct {
	Cards      []cards.ResolvedCard
	Unresolved []string
}

// Resolver coordinates parse, cache, and remote lookup for one submission
// at a time. It is safe for concurrent use; concurrent runs at worst repeat
// a remote fetch or overwrite cache entries with equally fresh data.
type Resolver struct {
	cache  Cache
	lookup Lookup
	logger *slog.Logger
}

// New creates a resolver. cache may be nil to run without one.
func New(cache Cache, lookup Lookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: cache, lookup: lookup, logger: logger}
}

// Resolve parses text and resolves every entry to a card record. Entries
// whose names cannot be resolved are dropped from Cards and reported once
// in Unresolved. N duplicate entries for one name cost a single lookup.
//
// A canceled context aborts before any cache write; the caller decides
// whether cancellation is worth mentioning.
func (r *Resolver) Resolve(ctx context.Context, text string) (*Result, error) {
	entries := decklist.Parse(text)
	if len(entries) == 0 {
		return nil, ErrEmptyDecklist
	}

	// Distinct names, case-insensitive, first-seen order.
	seen := make(map[string]bool)
	distinct := make([]string, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, e.Name)
		}
	}

	merged := make(map[string]cards.Card)
	if r.cache != nil {
		for key, card := range r.cache.GetMany(distinct) {
			merged[key] = card
		}
	}

	var misses []string
	for _, name := range distinct {
		if _, ok := merged[strings.ToLower(name)]; !ok {
			misses = append(misses, name)
		}
	}

	if len(misses) > 0 {
		fetched, err := r.lookup.GetCardsByNames(ctx, misses)
		if err != nil {
			return nil, err
		}
		// A superseded run must not touch the cache.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(fetched) > 0 && r.cache != nil {
			toCache := make([]cards.ResolvedCard, 0, len(fetched))
			for _, card := range fetched {
				toCache = append(toCache, cards.ResolvedCard{Card: card, Quantity: 1})
			}
			r.cache.Put(toCache)
		}

		for key, card := range fetched {
			merged[key] = card
		}
	}

	result := &Result{}
	for _, e := range entries {
		card, ok := merged[strings.ToLower(e.Name)]
		if !ok {
			continue
		}
		result.Cards = append(result.Cards, cards.ResolvedCard{Card: card, Quantity: e.Quantity})
	}

	for _, name := range distinct {
		if _, ok := merged[strings.ToLower(name)]; !ok {
			result.Unresolved = append(result.Unresolved, name)
		}
	}
	if len(result.Unresolved) > 0 {
		r.logger.Warn("decklist names unresolved", "names", result.Unresolved)
	}

	return result, nil
}
