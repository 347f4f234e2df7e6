package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	pkgkafka "github.com/rodrigo-augusto/customer-api/pkg/kafka"
	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

// Event types for customer domain events.
const (
	TypeCustomerCreated = "customer.created"
	TypeCustomerUpdated = "customer.updated"
	TypeCustomerDeleted = "customer.deleted"
	TypeFavoriteAdded   = "customer.favorite_added"
)

// Aggregate type constant.
const AggregateTypeCustomer = "customer"

// Source identifier for events originating from this service.
const SourceCustomerAPI = "customer-api"

// CustomerData is the payload for customer.created and customer.updated.
type CustomerData struct {
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	FavoriteProducts []domain.Product `json:"favoriteProducts"`
}

// CustomerDeletedData is the payload for customer.deleted.
type CustomerDeletedData struct {
	Email string `json:"email"`
}

// FavoriteAddedData is the payload for customer.favorite_added.
type FavoriteAddedData struct {
	Email   string         `json:"email"`
	Product domain.Product `json:"product"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes customer domain events. A Producer built with a nil
// Publisher is disabled and every publish is a no-op.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the customer service.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		pub:    pub,
		logger: logger,
	}
}

// Enabled reports whether events are actually published.
func (p *Producer) Enabled() bool {
	return p != nil && p.pub != nil
}

// PublishCustomerCreated publishes a customer.created event.
func (p *Producer) PublishCustomerCreated(ctx context.Context, c *domain.Customer) error {
	return p.publish(ctx, TypeCustomerCreated, c.Email, customerData(c))
}

// PublishCustomerUpdated publishes a customer.updated event.
func (p *Producer) PublishCustomerUpdated(ctx context.Context, c *domain.Customer) error {
	return p.publish(ctx, TypeCustomerUpdated, c.Email, customerData(c))
}

// PublishCustomerDeleted publishes a customer.deleted event.
func (p *Producer) PublishCustomerDeleted(ctx context.Context, email string) error {
	return p.publish(ctx, TypeCustomerDeleted, email, CustomerDeletedData{Email: email})
}

// PublishFavoriteAdded publishes a customer.favorite_added event.
func (p *Producer) PublishFavoriteAdded(ctx context.Context, email string, product domain.Product) error {
	return p.publish(ctx, TypeFavoriteAdded, email, FavoriteAddedData{Email: email, Product: product})
}

func (p *Producer) publish(ctx context.Context, eventType, email string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(eventType, email, AggregateTypeCustomer, SourceCustomerAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	topic := topicFor(eventType)
	if err := p.pub.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published customer event",
		slog.String("event_type", eventType),
		slog.String("email", email),
	)
	return nil
}

func topicFor(eventType string) string {
	switch eventType {
	case TypeCustomerCreated:
		return pkgkafka.Topic(AggregateTypeCustomer, "created")
	case TypeCustomerUpdated:
		return pkgkafka.Topic(AggregateTypeCustomer, "updated")
	case TypeCustomerDeleted:
		return pkgkafka.Topic(AggregateTypeCustomer, "deleted")
	default:
		return pkgkafka.Topic(AggregateTypeCustomer, "favorite_added")
	}
}

func customerData(c *domain.Customer) CustomerData {
	favorites := c.FavoriteProducts
	if favorites == nil {
		favorites = []domain.Product{}
	}
	return CustomerData{Email: c.Email, Name: c.Name, FavoriteProducts: favorites}
}
