package client

import (
	"regexp"
	"strconv"
	"strings"
)

// The grammar here intentionally duplicates internal/decklist so this layer
// can parse locally, pre-filter cache hits, and only send uncached names to
// the server. The two implementations are kept behaviorally identical by
// the parity tests; change both or neither.

const (
	maxQuantity   = 100
	maxNameLength = 200
)

// Entry is one locally parsed decklist line.
type Entry struct {
	Quantity int
	Name     string
}

var entryPattern = regexp.MustCompile(`^\s*(\d+)\s*[xX]?\s+(.+?)\s*$`)

// ParseDecklist converts raw decklist text into entries, preserving line
// order and duplicates.
func ParseDecklist(text string) []Entry {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		match := entryPattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}

		name := match[2]
		if len(name) > maxNameLength {
			continue
		}

		quantity, err := strconv.Atoi(match[1])
		if err != nil || quantity > maxQuantity {
			quantity = maxQuantity
		}

		entries = append(entries, Entry{Quantity: quantity, Name: name})
	}

	return entries
}
