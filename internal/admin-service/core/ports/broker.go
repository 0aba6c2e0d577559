package ports

import (
	"context"

	"shop-admin/internal/admin-service/core/domain/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumeOptions struct {
	Prefetch  int
	AutoAck   bool
	Exclusive bool
}

type IAdminBroker interface {
	PublishJSON(ctx context.Context, routingKey string, msg any) error
	Consume(ctx context.Context, queueName, bindingKey string, opts ConsumeOptions) (<-chan amqp.Delivery, error)
	IsAlive() bool
	Close() error
}

// IUsersEventPublisher receives every change of the admin users view.
type IUsersEventPublisher interface {
	PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error
}
