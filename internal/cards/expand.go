package cards

import "fmt"

const (
	// MaxQuantity caps how many copies of a single card are rendered.
	MaxQuantity = 100

	// MaxTotalCards caps the total number of display units across all
	// cards, bounding render and print cost.
	MaxTotalCards = 1000
)

// Expand replicates each resolved card quantity times, giving every copy a
// key that is unique across the whole output. Quantities are clamped into
// [0, MaxQuantity] before replication; once the output reaches
// MaxTotalCards, expansion stops and the remainder is dropped.
//
// The key embeds the card's position in the input, not just its name, so
// two entries that legitimately share a display name still expand to
// distinct keys.
func Expand(resolved []ResolvedCard) []ExpandedCard {
	expanded := make([]ExpandedCard, 0, len(resolved))

	for i, card := range resolved {
		qty := card.Quantity
		if qty < 0 {
			qty = 0
		}
		if qty > MaxQuantity {
			qty = MaxQuantity
		}

		for copy := 0; copy < qty; copy++ {
			if len(expanded) >= MaxTotalCards {
				return expanded
			}
			expanded = append(expanded, ExpandedCard{
				ResolvedCard: card,
				Key:          fmt.Sprintf("%s-%d-%d", card.Name, i, copy),
			})
		}
	}

	return expanded
}
