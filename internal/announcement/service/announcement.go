package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"html"
	"io"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"

	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/internal/announcement/storage"
	"github.com/petspot/petspot-backend/internal/announcement/validation"
	"github.com/petspot/petspot-backend/pkg/errors"
	"github.com/petspot/petspot-backend/pkg/logger"
)

// DefaultRangeKm is used when a location filter has no explicit range
const DefaultRangeKm = 5.0

const earthRadiusKm = 6371.0

// Repository is the persistence the service needs
type Repository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	GetByID(ctx context.Context, id string) (*domain.Announcement, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Announcement, error)
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher receives announcement lifecycle notifications
type EventPublisher interface {
	PublishCreated(ctx context.Context, a *domain.Announcement)
	PublishPhotoUploaded(ctx context.Context, id, photoURL, contentType string, size int64)
	PublishDeleted(ctx context.Context, id, deletedBy string)
}

// AnnouncementService handles announcement business logic
type AnnouncementService struct {
	repo      Repository
	photos    storage.PhotoStore
	publisher EventPublisher
	validator *validation.Validator
	sanitizer *bluemonday.Policy
	hashCost  int
	logger    *logger.Logger
}

// Option configures an AnnouncementService
type Option func(*AnnouncementService)

// WithHashCost overrides the bcrypt cost for management passwords
func WithHashCost(cost int) Option {
	return func(s *AnnouncementService) {
		s.hashCost = cost
	}
}

// WithValidator replaces the default request validator
func WithValidator(v *validation.Validator) Option {
	return func(s *AnnouncementService) {
		s.validator = v
	}
}

// NewAnnouncementService creates a new announcement service. publisher may be
// nil, in which case no events are emitted.
func NewAnnouncementService(
	repo Repository,
	photos storage.PhotoStore,
	publisher EventPublisher,
	log *logger.Logger,
	opts ...Option,
) *AnnouncementService {
	s := &AnnouncementService{
		repo:      repo,
		photos:    photos,
		publisher: publisher,
		validator: validation.New(nil),
		sanitizer: bluemonday.StrictPolicy(),
		hashCost:  bcrypt.DefaultCost,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator exposes the request validator used by Create
func (s *AnnouncementService) Validator() *validation.Validator {
	return s.validator
}

// Create validates and persists an announcement. The plaintext management
// password is only ever returned here.
func (s *AnnouncementService) Create(ctx context.Context, req *domain.CreateAnnouncementRequest) (*domain.CreateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	password, err := generateManagementPassword()
	if err != nil {
		return nil, errors.Internal("failed to generate management password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, errors.Internal("failed to hash management password")
	}

	a := &domain.Announcement{
		ID:                     uuid.New().String(),
		PetName:                s.optionalText(req.PetName),
		Species:                req.Species,
		Breed:                  s.optionalText(req.Breed),
		Sex:                    req.Sex,
		Age:                    req.Age,
		Description:            s.optionalText(req.Description),
		MicrochipNumber:        optional(req.MicrochipNumber),
		LocationLatitude:       *req.LocationLatitude,
		LocationLongitude:      *req.LocationLongitude,
		Email:                  optional(strings.TrimSpace(req.Email)),
		Phone:                  optional(strings.TrimSpace(req.Phone)),
		LastSeenDate:           req.LastSeenDate,
		Status:                 req.Status,
		Reward:                 s.optionalText(req.Reward),
		ManagementPasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("announcement_id", a.ID).
		Str("status", string(a.Status)).
		Str("species", a.Species).
		Msg("announcement created")

	if s.publisher != nil {
		s.publisher.PublishCreated(ctx, a)
	}

	return &domain.CreateResult{Announcement: a, ManagementPassword: password}, nil
}

// GetByID returns a single announcement
func (s *AnnouncementService) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns announcements newest first. With a location filter only
// announcements within the range (great-circle distance) are kept.
func (s *AnnouncementService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Announcement, error) {
	if filter.Location == nil {
		return s.repo.List(ctx, filter)
	}

	loc := *filter.Location
	if loc.RangeKm <= 0 {
		loc.RangeKm = DefaultRangeKm
	}

	all, err := s.repo.List(ctx, domain.ListFilter{Status: filter.Status})
	if err != nil {
		return nil, err
	}

	nearby := make([]*domain.Announcement, 0, len(all))
	for _, a := range all {
		if Distance(loc.Latitude, loc.Longitude, a.LocationLatitude, a.LocationLongitude) <= loc.RangeKm {
			nearby = append(nearby, a)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].CreatedAt.After(nearby[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(nearby) {
			return []*domain.Announcement{}, nil
		}
		nearby = nearby[filter.Offset:]
	}
	if filter.Limit > 0 && len(nearby) > filter.Limit {
		nearby = nearby[:filter.Limit]
	}
	return nearby, nil
}

// UploadPhoto attaches a photo to an announcement. The management password
// issued by Create authorizes the upload.
func (s *AnnouncementService) UploadPhoto(ctx context.Context, id, password string, photo *domain.PhotoUpload) (*domain.Announcement, error) {
	a, err := s.authorize(ctx, id, password)
	if err != nil {
		return nil, err
	}

	if photo == nil || len(photo.Content) == 0 {
		return nil, errors.FieldInvalid("photo", "this field is required")
	}

	mtype := mimetype.Detect(photo.Content)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.FieldInvalid("photo", "must be an image, got "+mtype.String())
	}

	key := fmt.Sprintf("announcements/%s/%s%s", a.ID, uuid.New().String(), mtype.Extension())
	url, err := s.photos.Put(ctx, key, bytes.NewReader(photo.Content), int64(len(photo.Content)), mtype.String())
	if err != nil {
		s.logger.Error().Err(err).Str("announcement_id", a.ID).Msg("failed to store photo")
		return nil, errors.Internal("failed to store photo")
	}

	if err := s.repo.UpdatePhotoURL(ctx, a.ID, url); err != nil {
		return nil, err
	}
	a.PhotoURL = &url

	s.logger.Info().
		Str("announcement_id", a.ID).
		Str("content_type", mtype.String()).
		Int("size_bytes", len(photo.Content)).
		Msg("announcement photo uploaded")

	if s.publisher != nil {
		s.publisher.PublishPhotoUploaded(ctx, a.ID, url, mtype.String(), int64(len(photo.Content)))
	}

	return a, nil
}

// ReadPhoto reads at most maxBytes from r. Larger inputs are rejected.
func ReadPhoto(r io.Reader, filename string, maxBytes int64) (*domain.PhotoUpload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, errors.BadRequest("failed to read photo")
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.FieldInvalid("photo", fmt.Sprintf("must be at most %d bytes", maxBytes))
	}
	return &domain.PhotoUpload{Filename: filename, Size: int64(len(data)), Content: data}, nil
}

// Delete removes an announcement and its photo. Used by moderators.
func (s *AnnouncementService) Delete(ctx context.Context, id, actorID string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if a.PhotoURL != nil {
		if key := photoKey(*a.PhotoURL); key != "" {
			if err := s.photos.Delete(ctx, key); err != nil {
				s.logger.Warn().Err(err).Str("announcement_id", id).Msg("failed to delete photo object")
			}
		}
	}

	s.logger.Info().Str("announcement_id", id).Str("actor_id", actorID).Msg("announcement deleted")

	if s.publisher != nil {
		s.publisher.PublishDeleted(ctx, id, actorID)
	}
	return nil
}

func (s *AnnouncementService) authorize(ctx context.Context, id, password string) (*domain.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidManagementPassword()
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(a.ManagementPasswordHash), []byte(password)) != nil {
		return nil, errors.InvalidManagementPassword()
	}
	return a, nil
}

// optionalText strips markup and whitespace, mapping empty results to nil
func (s *AnnouncementService) optionalText(v string) *string {
	clean := html.UnescapeString(s.sanitizer.Sanitize(v))
	return optional(strings.TrimSpace(clean))
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func photoKey(url string) string {
	if i := strings.Index(url, "announcements/"); i >= 0 {
		return url[i:]
	}
	return ""
}

// generateManagementPassword returns a random 6-digit code
func generateManagementPassword() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Distance returns the haversine distance in kilometres
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
