// Package decklist parses freeform decklist text into structured entries.
//
// The grammar is deliberately duplicated by the request-issuing layer in
// internal/client so it can pre-filter cache hits without a round trip;
// parity between the two is enforced by golden-vector tests.
package decklist

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxQuantity is the largest quantity a single entry may carry.
	// Larger values are clamped, not rejected.
	MaxQuantity = 100

	// MaxNameLength is the longest accepted card name. A matched name
	// beyond this drops the whole line rather than truncating it.
	MaxNameLength = 200
)

// Entry is one parsed decklist line: a quantity plus a card name.
type Entry struct {
	Quantity int
	Name     string
}

// entryPattern matches lines like "4 Lightning Bolt", "4x Lightning Bolt",
// "1X Black Lotus".
var entryPattern = regexp.MustCompile(`^\s*(\d+)\s*[xX]?\s+(.+?)\s*$`)

// Parse converts raw decklist text into entries, preserving line order and
// duplicate names. Blank lines, comment lines (// or #), and lines that do
// not match the entry grammar are skipped silently.
func Parse(text string) []Entry {
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
		if len(name) > MaxNameLength {
			continue
		}

		quantity, err := strconv.Atoi(match[1])
		if err != nil || quantity > MaxQuantity {
			// The pattern guarantees digits, so a parse error means the
			// value overflows int; either way it clamps.
			quantity = MaxQuantity
		}

		entries = append(entries, Entry{Quantity: quantity, Name: name})
	}

	return entries
}
