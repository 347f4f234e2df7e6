package repository

import (
	"context"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
)

// CustomerRepository defines the interface for customer persistence operations.
// Records are keyed by email and kept in insertion order. Implementations
// hand out copies; mutating a returned record never changes stored state.
type CustomerRepository interface {
	// List returns every customer in insertion order.
	List(ctx context.Context) ([]domain.Customer, error)

	// FindByEmail returns the customer with the given email (case-sensitive),
	// or an error wrapping errors.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// Add appends a customer. Uniqueness is the caller's responsibility.
	Add(ctx context.Context, customer *domain.Customer) error

	// Update overwrites the name and favorites of the customer with the same
	// email, or returns an error wrapping errors.ErrNotFound.
	Update(ctx context.Context, customer *domain.Customer) error

	// DeleteByEmail removes the customer and reports whether one was removed.
	DeleteByEmail(ctx context.Context, email string) (bool, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
