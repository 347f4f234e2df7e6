// Package catalog looks up product details in the external product catalog.
package catalog

import (
	"context"
	"errors"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
)

// ErrProductNotFound is returned when the catalog has no product for an id,
// including when it answers 200 with an empty body.
var ErrProductNotFound = errors.New("product not found in catalog")

// Lookup fetches a product snapshot by id.
type Lookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}
