package events

import (
	"context"

	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/messaging"
)

// Publisher is satisfied by *messaging.Publisher
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// AnnouncementEventPublisher publishes announcement lifecycle events.
// Failures are logged, never returned: events are best-effort.
type AnnouncementEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewAnnouncementEventPublisher declares the announcement exchange and returns a publisher on it
func NewAnnouncementEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*AnnouncementEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAnnouncementEvents, "announcement-service", log)
	if err != nil {
		return nil, err
	}

	return NewWithPublisher(publisher, log), nil
}

// NewWithPublisher wraps an existing publisher
func NewWithPublisher(p Publisher, log *logger.Logger) *AnnouncementEventPublisher {
	return &AnnouncementEventPublisher{
		publisher: p,
		logger:    log,
	}
}

// PublishCreated publishes announcement.created
func (p *AnnouncementEventPublisher) PublishCreated(ctx context.Context, a *domain.Announcement) {
	lat, lng := a.LocationLatitude, a.LocationLongitude
	data := messaging.AnnouncementCreatedEvent{
		AnnouncementID:    a.ID,
		Status:            string(a.Status),
		Species:           a.Species,
		LocationLatitude:  &lat,
		LocationLongitude: &lng,
		LastSeenDate:      a.LastSeenDate,
		HasMicrochip:      a.HasMicrochip(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventAnnouncementCreated, data); err != nil {
		p.logger.Error().Err(err).Str("announcement_id", a.ID).Msg("failed to publish announcement created event")
	}
}

// PublishPhotoUploaded publishes announcement.photo_uploaded
func (p *AnnouncementEventPublisher) PublishPhotoUploaded(ctx context.Context, id, photoURL, contentType string, size int64) {
	data := messaging.AnnouncementPhotoUploadedEvent{
		AnnouncementID: id,
		PhotoURL:       photoURL,
		ContentType:    contentType,
		SizeBytes:      size,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAnnouncementPhotoUploaded, data); err != nil {
		p.logger.Error().Err(err).Str("announcement_id", id).Msg("failed to publish photo uploaded event")
	}
}

// PublishDeleted publishes announcement.deleted
func (p *AnnouncementEventPublisher) PublishDeleted(ctx context.Context, id, deletedBy string) {
	data := messaging.AnnouncementDeletedEvent{
		AnnouncementID: id,
		DeletedBy:      deletedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAnnouncementDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("announcement_id", id).Msg("failed to publish announcement deleted event")
	}
}
