package service

import (
	"context"
	"errors"

	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
)

// FanoutPublisher delivers an event to every publisher, collecting failures.
type FanoutPublisher []ports.IUsersEventPublisher

func NewFanoutPublisher(publishers ...ports.IUsersEventPublisher) FanoutPublisher {
	var f FanoutPublisher
	for _, p := range publishers {
		if p != nil {
			f = append(f, p)
		}
	}
	return f
}

func (f FanoutPublisher) PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishUsersChanged(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
