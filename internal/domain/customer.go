package domain

// Customer is a customer record keyed by email.
type Customer struct {
	Email            string    `json:"email" validate:"required,email,email_domain=com net"`
	Name             string    `json:"name" validate:"required,min=3,max=80"`
	FavoriteProducts []Product `json:"favoriteProducts"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	out := *c
	out.FavoriteProducts = make([]Product, len(c.FavoriteProducts))
	copy(out.FavoriteProducts, c.FavoriteProducts)
	return &out
}

// HasFavorite reports whether productID is already among the favorites.
func (c *Customer) HasFavorite(productID string) bool {
	for _, p := range c.FavoriteProducts {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// AddFavorite appends p to the favorites. It returns false and leaves the
// list unchanged when a product with the same id is already present.
func (c *Customer) AddFavorite(p Product) bool {
	if c.HasFavorite(p.ID) {
		return false
	}
	c.FavoriteProducts = append(c.FavoriteProducts, p)
	return true
}

// DuplicateFavorite returns the first product id that appears more than once
// in the favorites.
func (c *Customer) DuplicateFavorite() (string, bool) {
	seen := make(map[string]struct{}, len(c.FavoriteProducts))
	for _, p := range c.FavoriteProducts {
		if _, ok := seen[p.ID]; ok {
			return p.ID, true
		}
		seen[p.ID] = struct{}{}
	}
	return "", false
}
