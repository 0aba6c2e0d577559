package service

import (
	"context"
	"errors"
	"testing"

	"shop-admin/internal/admin-service/core/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestFanoutPublisher(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("down")}
	fanout := NewFanoutPublisher(ok, nil, failing)

	err := fanout.PublishUsersChanged(context.Background(), models.UsersChangedEvent{UserId: "u1"})

	assert.ErrorContains(t, err, "down")
	assert.Len(t, fanout, 2)
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
}

func TestFanoutPublisherEmpty(t *testing.T) {
	assert.NoError(t, NewFanoutPublisher().PublishUsersChanged(context.Background(), models.UsersChangedEvent{}))
}
