// Package cards defines the card value types shared by the resolution
// pipeline and the display layers.
package cards

// Card holds a resolved card's canonical attributes from the data source,
// independent of any particular decklist usage. Values are immutable once
// produced by a lookup or cache hit.
type Card struct {
	// Name uses the canonical casing returned by the data source.
	Name string `json:"name"`

	// ImageURL points at the large card image, or nil if the source
	// provided none.
	ImageURL *string `json:"imageUrl"`

	// ScryfallURL is the canonical reference page for the card, or nil.
	ScryfallURL *string `json:"scryfallUrl"`

	// SetCode is the printing's set code, or nil.
	SetCode *string `json:"setCode"`
}

// ResolvedCard combines a card record with the quantity from one decklist
// entry. Quantity is a property of usage, not of the card itself.
type ResolvedCard struct {
	Card
	Quantity int `json:"quantity"`
}

// ExpandedCard is a single display unit produced by replicating a resolved
// card. Key is unique across the whole expanded output.
type ExpandedCard struct {
	ResolvedCard
	Key string `json:"key"`
}
