package scryfall

import "github.com/mtgproxy/proxygen/internal/cards"

// Card is the slice of a Scryfall card object the pipeline consumes.
type Card struct {
	Name        string     `json:"name"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
	ScryfallURI string     `json:"scryfall_uri"`
	SetCode     string     `json:"set"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small"`
	Normal     string `json:"normal"`
	Large      string `json:"large"`
	PNG        string `json:"png"`
	ArtCrop    string `json:"art_crop"`
	BorderCrop string `json:"border_crop"`
}

// Record converts the API object into the pipeline's card record. Optional
// fields the API omitted become nil rather than empty strings.
func (c Card) Record() cards.Card {
	record := cards.Card{Name: c.Name}

	if c.ImageURIs != nil && c.ImageURIs.Large != "" {
		large := c.ImageURIs.Large
		record.ImageURL = &large
	}
	if c.ScryfallURI != "" {
		uri := c.ScryfallURI
		record.ScryfallURL = &uri
	}
	if c.SetCode != "" {
		set := c.SetCode
		record.SetCode = &set
	}

	return record
}
