package domain

// Product is a snapshot of catalog data taken when a customer favorites it.
// It is never re-synced with the catalog.
type Product struct {
	ID    string  `json:"id"`
	Brand string  `json:"brand"`
	Image string  `json:"image"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// IsZero reports whether p carries no catalog data at all.
func (p Product) IsZero() bool {
	return p == Product{}
}
