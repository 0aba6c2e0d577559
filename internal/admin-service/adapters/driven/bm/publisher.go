package bm

import (
	"context"

	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"
)

type Publisher struct {
	log    mylogger.Logger
	broker ports.IAdminBroker
}

var _ ports.IUsersEventPublisher = (*Publisher)(nil)

func NewPublisher(broker ports.IAdminBroker, log mylogger.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		log:    log,
	}
}

func (p *Publisher) PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error {
	if err := p.broker.PublishJSON(ctx, models.RoutingUsersChanged, event); err != nil {
		p.log.Action("publish").Error("failed to publish users changed event", err, "event_id", event.EventId)
		return err
	}
	p.log.Action("publish").Debug("users changed event published", "event_id", event.EventId)
	return nil
}
