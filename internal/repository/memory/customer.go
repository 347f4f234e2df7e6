package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/internal/repository"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

// CustomerRepository is an in-process customer store backed by a slice.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers []*domain.Customer
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository creates an empty in-memory repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{}
}

// List returns copies of all customers in insertion order.
func (r *CustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c.Clone())
	}
	return out, nil
}

// FindByEmail returns a copy of the first customer whose email matches.
func (r *CustomerRepository) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(email); i >= 0 {
		return r.customers[i].Clone(), nil
	}
	return nil, apperrors.NotFound("customer", email)
}

// Add appends a copy of customer.
func (r *CustomerRepository) Add(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.customers = append(r.customers, customer.Clone())
	return nil
}

// Update replaces the name and favorites of the stored customer.
func (r *CustomerRepository) Update(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(customer.Email)
	if i < 0 {
		return apperrors.NotFound("customer", customer.Email)
	}

	updated := customer.Clone()
	r.customers[i].Name = updated.Name
	r.customers[i].FavoriteProducts = updated.FavoriteProducts
	return nil
}

// DeleteByEmail removes the first customer whose email matches.
func (r *CustomerRepository) DeleteByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(email)
	if i < 0 {
		return false, nil
	}
	r.customers = slices.Delete(r.customers, i, i+1)
	return true, nil
}

// Ping always succeeds; it lets the readiness check treat every driver alike.
func (r *CustomerRepository) Ping(_ context.Context) error {
	return nil
}

// indexOf must be called with mu held.
func (r *CustomerRepository) indexOf(email string) int {
	for i, c := range r.customers {
		if c.Email == email {
			return i
		}
	}
	return -1
}
