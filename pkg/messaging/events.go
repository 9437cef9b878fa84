package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventAnnouncementCreated       = "announcement.created"
	EventAnnouncementPhotoUploaded = "announcement.photo_uploaded"
	EventAnnouncementDeleted       = "announcement.deleted"
)

// Exchange names
const (
	ExchangeAnnouncementEvents = "announcement.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// AnnouncementCreatedEvent is published after an announcement is persisted
type AnnouncementCreatedEvent struct {
	AnnouncementID    string   `json:"announcement_id"`
	Status            string   `json:"status"`
	Species           string   `json:"species"`
	LocationLatitude  *float64 `json:"location_latitude,omitempty"`
	LocationLongitude *float64 `json:"location_longitude,omitempty"`
	LastSeenDate      string   `json:"last_seen_date"`
	HasMicrochip      bool     `json:"has_microchip"`
}

// AnnouncementPhotoUploadedEvent is published after a photo is attached
type AnnouncementPhotoUploadedEvent struct {
	AnnouncementID string `json:"announcement_id"`
	PhotoURL       string `json:"photo_url"`
	ContentType    string `json:"content_type"`
	SizeBytes      int64  `json:"size_bytes"`
}

// AnnouncementDeletedEvent is published when a moderator removes an announcement
type AnnouncementDeletedEvent struct {
	AnnouncementID string `json:"announcement_id"`
	DeletedBy      string `json:"deleted_by"`
}
