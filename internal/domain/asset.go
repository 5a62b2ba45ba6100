package domain

// AssetSummary is the catalog snippet shown next to conversations and reviews.
type AssetSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Image      string `json:"image,omitempty"`
	OwnerID    int64  `json:"owner_id"`
}
