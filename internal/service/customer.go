package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rodrigo-augusto/customer-api/internal/catalog"
	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/internal/event"
	"github.com/rodrigo-augusto/customer-api/internal/repository"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
	"github.com/rodrigo-augusto/customer-api/pkg/validator"
)

// CustomerService implements the customer use cases on top of a repository
// and the product catalog.
type CustomerService struct {
	repo     repository.CustomerRepository
	catalog  catalog.Lookup
	producer *event.Producer
	logger   *slog.Logger
	locks    *keyLock
}

// NewCustomerService creates a new customer service. producer may be nil.
func NewCustomerService(
	repo repository.CustomerRepository,
	lookup catalog.Lookup,
	producer *event.Producer,
	logger *slog.Logger,
) *CustomerService {
	return &CustomerService{
		repo:     repo,
		catalog:  lookup,
		producer: producer,
		logger:   logger,
		locks:    newKeyLock(),
	}
}

// List returns every customer in insertion order.
func (s *CustomerService) List(ctx context.Context) Result {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return s.internal(ctx, "list customers", err)
	}
	return ok(customers)
}

// Create validates c and stores it with an empty favorites list. Validation
// runs before the duplicate check; both fail with 409.
func (s *CustomerService) Create(ctx context.Context, c domain.Customer) Result {
	unlock := s.locks.Lock(c.Email)
	defer unlock()

	if err := domain.Validate(&c); err != nil {
		return s.invalid(ctx, c.Email, err)
	}

	_, err := s.repo.FindByEmail(ctx, c.Email)
	switch {
	case err == nil:
		return fail(apperrors.AlreadyExists("customer", "email", c.Email))
	case !errors.Is(err, apperrors.ErrNotFound):
		return s.internal(ctx, "find customer", err)
	}

	c.FavoriteProducts = []domain.Product{}
	if err := s.repo.Add(ctx, &c); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return fail(err)
		}
		return s.internal(ctx, "add customer", err)
	}

	if err := s.producer.PublishCustomerCreated(ctx, &c); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.created event",
			slog.String("email", c.Email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer created", slog.String("email", c.Email))
	return ok(&c)
}

// Update replaces the name and favorites of the customer with c.Email. Nil
// favorites store an empty list. Existence is checked before validation, and
// favorites repeating a product id are rejected with 409.
func (s *CustomerService) Update(ctx context.Context, c domain.Customer) Result {
	unlock := s.locks.Lock(c.Email)
	defer unlock()

	stored, err := s.repo.FindByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fail(apperrors.NotFound("customer", c.Email))
		}
		return s.internal(ctx, "find customer", err)
	}

	if err := domain.Validate(&c); err != nil {
		return s.invalid(ctx, c.Email, err)
	}

	if id, dup := c.DuplicateFavorite(); dup {
		return fail(apperrors.Conflict("product " + id + " is already a favorite"))
	}

	stored.Name = c.Name
	stored.FavoriteProducts = append([]domain.Product{}, c.FavoriteProducts...)

	if err := s.repo.Update(ctx, stored); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fail(err)
		}
		return s.internal(ctx, "update customer", err)
	}

	if err := s.producer.PublishCustomerUpdated(ctx, stored); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.updated event",
			slog.String("email", stored.Email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer updated", slog.String("email", stored.Email))
	return ok(stored)
}

// AddFavorite looks up productID in the catalog and appends it to the
// customer's favorites. A missing customer or any catalog failure is 404;
// a product already in the list is 409.
func (s *CustomerService) AddFavorite(ctx context.Context, email, productID string) Result {
	unlock := s.locks.Lock(email)
	defer unlock()

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fail(apperrors.NotFound("customer", email))
		}
		return s.internal(ctx, "find customer", err)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		attrs := []any{
			slog.String("email", email),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		}
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.logger.WarnContext(ctx, "product not found in catalog", attrs...)
		} else {
			s.logger.ErrorContext(ctx, "catalog lookup failed", attrs...)
		}
		return fail(apperrors.NotFound("product", productID))
	}

	if !customer.AddFavorite(*product) {
		return fail(apperrors.Conflict("product " + product.ID + " is already a favorite"))
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fail(err)
		}
		return s.internal(ctx, "update customer", err)
	}

	if err := s.producer.PublishFavoriteAdded(ctx, email, *product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.favorite_added event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "favorite product added",
		slog.String("email", email),
		slog.String("product_id", product.ID),
	)
	return ok(customer)
}

// Delete removes the customer with email.
func (s *CustomerService) Delete(ctx context.Context, email string) Result {
	unlock := s.locks.Lock(email)
	defer unlock()

	removed, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return s.internal(ctx, "delete customer", err)
	}
	if !removed {
		return fail(apperrors.NotFound("customer", email))
	}

	if err := s.producer.PublishCustomerDeleted(ctx, email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.deleted event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer deleted", slog.String("email", email))
	return ok(nil)
}

func (s *CustomerService) invalid(ctx context.Context, email string, err error) Result {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		s.logger.DebugContext(ctx, "customer failed validation",
			slog.String("email", email),
			slog.Any("fields", ve.Fields()),
		)
		return fail(apperrors.ValidationFailed(ve.Fields()))
	}
	return fail(apperrors.ValidationFailed(map[string]string{"customer": err.Error()}))
}

func (s *CustomerService) internal(ctx context.Context, op string, err error) Result {
	s.logger.ErrorContext(ctx, op+" failed", slog.String("error", err.Error()))
	return fail(apperrors.Internal(err))
}
