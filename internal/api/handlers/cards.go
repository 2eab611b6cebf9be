// Package handlers contains the HTTP handlers for the proxygen API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mtgproxy/proxygen/internal/api/response"
	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/resolver"
)

// MaxDecklistChars bounds the submitted decklist text.
const MaxDecklistChars = 10000

// DecklistRequest is the body of POST /api/cards/parse.
type DecklistRequest struct {
	Text string `json:"text"`
}

// CardsHandler handles decklist resolution requests.
type CardsHandler struct {
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// NewCardsHandler creates a new CardsHandler.
func NewCardsHandler(res *resolver.Resolver, logger *slog.Logger) *CardsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardsHandler{resolver: res, logger: logger}
}

// ParseDecklist resolves a decklist submission into card records.
//
// The success body is a bare JSON array of resolved cards; clients predating
// the warning banner depend on that shape, so unresolved names are logged
// here and left for the requesting layer to derive.
func (h *CardsHandler) ParseDecklist(w http.ResponseWriter, r *http.Request) {
	var req DecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		response.BadRequest(w, "Decklist text is required.")
		return
	}
	if utf8.RuneCountInString(req.Text) > MaxDecklistChars {
		response.BadRequest(w, "Decklist text must not exceed 10,000 characters.")
		return
	}

	result, err := h.resolver.Resolve(r.Context(), req.Text)
	switch {
	case errors.Is(err, resolver.ErrEmptyDecklist):
		response.BadRequest(w, "No valid card entries found in decklist.")
		return
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to say to it.
		return
	case err != nil:
		h.logger.Error("decklist resolution failed", "error", err)
		response.InternalError(w, "failed to resolve decklist")
		return
	}

	if result.Cards == nil {
		result.Cards = []cards.ResolvedCard{}
	}
	response.OK(w, result.Cards)
}
