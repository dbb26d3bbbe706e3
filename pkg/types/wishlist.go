package types

// WishlistEntry is the single wishlist shape used for guests and signed-in visitors.
// Cached fields are optional; readers resolve missing ones through the catalog.
type WishlistEntry struct {
	ID          string `json:"id"`
	CachedName  string `json:"cached_name,omitempty"`
	CachedImage string `json:"cached_image,omitempty"`
	CachedPrice *Money `json:"cached_price,omitempty"`
}

// Resolved reports whether the entry already carries its display fields.
func (w WishlistEntry) Resolved() bool {
	return w.CachedName != "" && w.CachedImage != ""
}

// WishlistEntryFromProduct snapshots the display fields of p.
func WishlistEntryFromProduct(p Product) WishlistEntry {
	price := p.Price
	return WishlistEntry{
		ID:          p.ID,
		CachedName:  p.Name,
		CachedImage: p.PrimaryImage(),
		CachedPrice: &price,
	}
}

type Wishlist struct {
	Items         []WishlistEntry `json:"items"`
	Authenticated bool            `json:"authenticated"`
	Stale         bool            `json:"stale,omitempty"`
}
