package reportflow

import (
	"context"
	"time"
)

// AnnouncementResult is returned by a successful create
type AnnouncementResult struct {
	ID                 string `json:"id"`
	ManagementPassword string `json:"managementPassword"`
}

// Announcement is the public read model of a report
type Announcement struct {
	ID                string    `json:"id"`
	PetName           string    `json:"petName,omitempty"`
	Species           string    `json:"species"`
	Breed             string    `json:"breed,omitempty"`
	Sex               string    `json:"sex"`
	Age               *int      `json:"age,omitempty"`
	Description       string    `json:"description,omitempty"`
	MicrochipNumber   string    `json:"microchipNumber,omitempty"`
	LocationLatitude  float64   `json:"locationLatitude"`
	LocationLongitude float64   `json:"locationLongitude"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	PhotoURL          string    `json:"photoUrl,omitempty"`
	LastSeenDate      string    `json:"lastSeenDate"`
	Status            string    `json:"status"`
	Reward            string    `json:"reward,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LocationFilter narrows a listing to a radius around a point
type LocationFilter struct {
	Latitude  float64
	Longitude float64
	RangeKm   float64
}

// AnnouncementService is the backend the submission pipeline talks to.
// Failures are returned as *SubmissionError.
type AnnouncementService interface {
	CreateAnnouncement(ctx context.Context, req *CreateAnnouncementRequest) (*AnnouncementResult, error)
	UploadPhoto(ctx context.Context, announcementID string, photo PhotoAttachment, managementPassword string) error
	GetAnnouncements(ctx context.Context, filter *LocationFilter) ([]Announcement, error)
	GetAnnouncementByID(ctx context.Context, id string) (*Announcement, error)
}

// PermissionState of the location permission
type PermissionState string

const (
	PermissionGranted    PermissionState = "granted"
	PermissionDenied     PermissionState = "denied"
	PermissionPrompt     PermissionState = "prompt"
	PermissionRestricted PermissionState = "restricted"
)

// Coordinates in decimal degrees
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeolocationCapability provides the device position
type GeolocationCapability interface {
	CurrentPermissionState(ctx context.Context) PermissionState
	RequestPermission(ctx context.Context) PermissionState
	// CurrentCoordinates returns nil when no fix is available
	CurrentCoordinates(ctx context.Context) (*Coordinates, error)
}

// PhotoMetadata describes a picked file
type PhotoMetadata struct {
	Filename  string
	SizeBytes int64
	// MimeType may be empty when the capability cannot tell
	MimeType string
}

// PhotoMetadataCapability reads metadata for a picked file
type PhotoMetadataCapability interface {
	ExtractMetadata(ctx context.Context, handle string) (PhotoMetadata, error)
}

// ClipboardCapability copies text. Failures are not surfaced.
type ClipboardCapability interface {
	CopyText(text string) error
}
