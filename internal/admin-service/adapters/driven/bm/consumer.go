package bm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const usersBindingKey = "admin.users.*"

// Consumer applies users-view changes made by other service instances: the
// local view is invalidated and local listeners are told to revalidate.
type Consumer struct {
	ctx      context.Context
	log      mylogger.Logger
	broker   ports.IAdminBroker
	cache    ports.IUsersViewCache
	notifier ports.IUsersEventPublisher
	origin   string

	retryInterval time.Duration
}

func NewConsumer(
	ctx context.Context,
	broker ports.IAdminBroker,
	cache ports.IUsersViewCache,
	notifier ports.IUsersEventPublisher,
	log mylogger.Logger,
) *Consumer {
	return &Consumer{
		ctx:      ctx,
		log:      log,
		broker:   broker,
		cache:    cache,
		notifier: notifier,
		origin:   mylogger.InstanceID(),

		retryInterval: time.Duration(reconnInterval) * time.Second,
	}
}

// SubscribeForMessages subscribes once and reports that error to the caller.
// A subscription lost later is retried in the background until the consumer
// context ends.
func (c *Consumer) SubscribeForMessages() error {
	msgCh, err := c.subscribe()
	if err != nil {
		return err
	}
	go c.run(msgCh)
	return nil
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	queue := "admin_users_view." + c.origin
	msgCh, err := c.broker.Consume(c.ctx, queue, usersBindingKey, ports.ConsumeOptions{
		Prefetch:  16,
		Exclusive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe users view: %w", err)
	}
	return msgCh, nil
}

func (c *Consumer) run(msgCh <-chan amqp.Delivery) {
	log := c.log.Action("consume_users_changed")
	for {
		for msg := range msgCh {
			if err := c.Handle(c.ctx, msg.Body); err != nil {
				log.Error("failed to apply users changed event", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := msg.Ack(false); err != nil {
				log.Error("failed to acknowledge message", err)
			}
		}

		if c.ctx.Err() != nil {
			log.Info("users changed subscription closed")
			return
		}
		log.Warn("users changed subscription lost, resubscribing")

		msgCh = c.resubscribe()
		if msgCh == nil {
			log.Info("users changed subscription closed")
			return
		}
	}
}

// resubscribe retries until it succeeds or the consumer context ends, in
// which case it returns nil.
func (c *Consumer) resubscribe() <-chan amqp.Delivery {
	log := c.log.Action("mb_resubscribing")
	t := time.NewTicker(c.retryInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			msgCh, err := c.subscribe()
			if err != nil {
				log.Info("resubscribe failed", "error", err.Error())
				continue
			}
			// events published while we were away are lost
			if _, err := c.cache.Invalidate(c.ctx); err != nil {
				log.Warn("failed to invalidate users view after resubscribe", "error", err.Error())
			}
			log.Action("mb_resubscribed").Info("users changed subscription restored")
			return msgCh
		case <-c.ctx.Done():
			return nil
		}
	}
}

// Handle applies one encoded event; events this instance published are
// skipped because they were applied before publishing.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var event models.UsersChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if event.Origin == c.origin {
		return nil
	}

	if _, err := c.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate users view: %w", err)
	}
	if c.notifier != nil {
		if err := c.notifier.PublishUsersChanged(ctx, event); err != nil {
			c.log.Action("consume_users_changed").Warn("failed to notify listeners", "error", err.Error())
		}
	}
	c.log.Action("consume_users_changed").Debug("users view invalidated", "event_id", event.EventId, "origin", event.Origin)
	return nil
}
