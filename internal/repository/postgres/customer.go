package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/internal/repository"
	"github.com/rodrigo-augusto/customer-api/pkg/database"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

// DBTX is the subset of *pgxpool.Pool the repository needs. pgxmock pools
// satisfy it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	listCustomersSQL  = `SELECT email, name, favorites FROM customers ORDER BY position`
	findCustomerSQL   = `SELECT email, name, favorites FROM customers WHERE email = $1`
	insertCustomerSQL = `INSERT INTO customers (email, name, favorites) VALUES ($1, $2, $3)`
	updateCustomerSQL = `UPDATE customers SET name = $2, favorites = $3, updated_at = NOW() WHERE email = $1`
	deleteCustomerSQL = `DELETE FROM customers WHERE email = $1`
)

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
// Favorites are stored as a JSONB array; position keeps insertion order.
type CustomerRepository struct {
	db DBTX
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns all customers ordered by insertion.
func (r *CustomerRepository) List(ctx context.Context) (customers []domain.Customer, err error) {
	ctx, end := database.TraceQuery(ctx, "ListCustomers", listCustomersSQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers = []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

// FindByEmail retrieves a customer by email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (c *domain.Customer, err error) {
	ctx, end := database.TraceQuery(ctx, "FindCustomerByEmail", findCustomerSQL)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	c, err = scanCustomer(r.db.QueryRow(ctx, findCustomerSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", email)
		}
		return nil, err
	}
	return c, nil
}

// Add inserts a customer. A duplicate email surfaces as ALREADY_EXISTS.
func (r *CustomerRepository) Add(ctx context.Context, c *domain.Customer) (err error) {
	ctx, end := database.TraceQuery(ctx, "InsertCustomer", insertCustomerSQL)
	defer func() { end(err) }()

	favorites, err := marshalFavorites(c.FavoriteProducts)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, insertCustomerSQL, c.Email, c.Name, favorites); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("customer", "email", c.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Update overwrites name and favorites of the customer with c.Email.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateCustomer", updateCustomerSQL)
	defer func() { end(err) }()

	favorites, err := marshalFavorites(c.FavoriteProducts)
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, updateCustomerSQL, c.Email, c.Name, favorites)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.Email)
	}
	return nil
}

// DeleteByEmail removes the customer and reports whether a row was deleted.
func (r *CustomerRepository) DeleteByEmail(ctx context.Context, email string) (removed bool, err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteCustomer", deleteCustomerSQL)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, deleteCustomerSQL, email)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// Ping checks database connectivity.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		c         domain.Customer
		favorites []byte
	)
	if err := row.Scan(&c.Email, &c.Name, &favorites); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}

	c.FavoriteProducts = []domain.Product{}
	if len(favorites) > 0 {
		if err := json.Unmarshal(favorites, &c.FavoriteProducts); err != nil {
			return nil, fmt.Errorf("decode favorites for %s: %w", c.Email, err)
		}
		if c.FavoriteProducts == nil {
			c.FavoriteProducts = []domain.Product{}
		}
	}
	return &c, nil
}

func marshalFavorites(products []domain.Product) ([]byte, error) {
	if products == nil {
		products = []domain.Product{}
	}
	b, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("encode favorites: %w", err)
	}
	return b, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
