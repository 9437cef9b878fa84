package events_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/internal/announcement/events"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/messaging"
	"github.com/petspot/petspot-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishCreated(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewWithPublisher(mock, logger.Nop())

	a := &domain.Announcement{
		ID:                "a1",
		Species:           domain.SpeciesCat,
		Status:            domain.StatusFound,
		LocationLatitude:  50.06,
		LocationLongitude: 19.94,
		LastSeenDate:      "2025-12-01",
		MicrochipNumber:   testutil.Ptr("123"),
	}
	p.PublishCreated(context.Background(), a)

	mock.AssertEventPublished(t, messaging.EventAnnouncementCreated)
	published := mock.Events()
	require.Len(t, published, 1)

	data, ok := published[0].Payload.(messaging.AnnouncementCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "a1", data.AnnouncementID)
	assert.Equal(t, "FOUND", data.Status)
	assert.True(t, data.HasMicrochip)
	assert.InDelta(t, 50.06, *data.LocationLatitude, 1e-9)
}

func TestPublishPhotoUploadedAndDeleted(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewWithPublisher(mock, logger.Nop())

	p.PublishPhotoUploaded(context.Background(), "a1", "http://photos/a1.png", "image/png", 68)
	p.PublishDeleted(context.Background(), "a1", "admin-1")

	published := mock.Events()
	require.Len(t, published, 2)
	assert.Equal(t, messaging.EventAnnouncementPhotoUploaded, published[0].Type)
	assert.Equal(t, messaging.EventAnnouncementDeleted, published[1].Type)
	assert.Equal(t, "admin-1", published[1].Payload.(messaging.AnnouncementDeletedEvent).DeletedBy)
}

func TestPublishFailureIsLogged(t *testing.T) {
	mock := testutil.NewMockPublisher()
	mock.Err = errors.New("channel closed")

	var buf bytes.Buffer
	p := events.NewWithPublisher(mock, logger.NewWithWriter("test", &buf))

	p.PublishDeleted(context.Background(), "a1", "admin-1")

	mock.AssertNoEventsPublished(t)
	assert.Contains(t, buf.String(), "failed to publish announcement deleted event")
	assert.Contains(t, buf.String(), "channel closed")
}
