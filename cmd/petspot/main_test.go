package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/petspot/petspot-backend/internal/announcement/client"
	"github.com/petspot/petspot-backend/internal/announcement/handler"
	"github.com/petspot/petspot-backend/internal/announcement/repository"
	"github.com/petspot/petspot-backend/internal/announcement/service"
	"github.com/petspot/petspot-backend/internal/announcement/storage"
	"github.com/petspot/petspot-backend/internal/announcement/validation"
	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/petspot/petspot-backend/pkg/auth"
	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stack struct {
	api    *client.Client
	repo   *repository.MemoryRepository
	photos *storage.MemoryStore
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := logger.Nop()

	repo := repository.NewMemoryRepository()
	photos := storage.NewMemoryStore("http://photos.test")
	svc := service.NewAnnouncementService(repo, photos, nil, log,
		service.WithHashCost(bcrypt.MinCost),
		// the flow stamps today's date, so the server clock must be real
		service.WithValidator(validation.New(time.Now)),
	)
	jwt := auth.NewManager(&config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.NewAnnouncementHandler(svc, handler.DefaultMaxPhotoBytes, log).Routes(r, jwt)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &stack{
		api:    client.New(&config.ClientConfig{APIBaseURL: srv.URL, Timeout: 5 * time.Second}),
		repo:   repo,
		photos: photos,
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

const answersYAML = `
microchip: "985112345678901"
petName: Rex
species: DOG
breed: Labrador
sex: MALE
age: 4
description: brown with a white paw
location:
  latitude: 52.2297
  longitude: 21.0122
email: owner@example.com
reward: "500 PLN"
`

func TestLoadAnswers(t *testing.T) {
	a, err := loadAnswers(writeFile(t, "answers.yaml", []byte(answersYAML)))
	require.NoError(t, err)

	assert.Equal(t, "985112345678901", a.Microchip)
	assert.Equal(t, "4", a.Age)
	require.NotNil(t, a.Location)
	assert.Equal(t, 52.2297, a.Location.Latitude)
	assert.False(t, a.Location.UseDevice)

	_, err = loadAnswers(writeFile(t, "broken.yaml", []byte("species: [")))
	assert.Error(t, err)
}

func TestDescriptionIntents(t *testing.T) {
	a := &Answers{LastSeenDate: "2025-12-01", Species: "CAT", Location: &Location{UseDevice: true}}

	intents, err := a.descriptionIntents()
	require.NoError(t, err)
	assert.Equal(t, reportflow.LastSeenDateChanged{Date: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}, intents[0])
	assert.Equal(t, reportflow.RequestGPS{}, intents[len(intents)-1])

	a.LastSeenDate = "01/12/2025"
	_, err = a.descriptionIntents()
	assert.Error(t, err)
}

func TestReport_CreatesAnnouncementWithPhoto(t *testing.T) {
	s := newStack(t)
	a, err := loadAnswers(writeFile(t, "answers.yaml", []byte(answersYAML)))
	require.NoError(t, err)
	a.Photo = writeFile(t, "rex.png", testutil.PNG)

	var out bytes.Buffer
	require.NoError(t, report(context.Background(), s.api, a, false, &out))

	assert.Contains(t, out.String(), "-> summary")
	assert.Contains(t, out.String(), "management password:")
	assert.Len(t, s.photos.Keys(), 1)

	list, err := s.api.GetAnnouncements(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rex", list[0].PetName)
	assert.Equal(t, "500 PLN", list[0].Reward)
	assert.NotEmpty(t, list[0].PhotoURL)
}

func TestReport_UsesDeviceLocation(t *testing.T) {
	s := newStack(t)
	a := &Answers{
		Photo:    writeFile(t, "tom.png", testutil.PNG),
		Species:  "CAT",
		Breed:    "Siamese",
		Sex:      "FEMALE",
		Location: &Location{Latitude: 50.06, Longitude: 19.94, UseDevice: true},
		Phone:    "+48 600 100 200",
	}

	var out bytes.Buffer
	require.NoError(t, report(context.Background(), s.api, a, false, &out))

	list, err := s.api.GetAnnouncements(context.Background(), &reportflow.LocationFilter{Latitude: 50.06, Longitude: 19.94})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "+48 600 100 200", list[0].Phone)
	assert.NotEmpty(t, list[0].PhotoURL)
}

func TestReport_PhotoIsRequired(t *testing.T) {
	s := newStack(t)
	a, err := loadAnswers(writeFile(t, "answers.yaml", []byte(answersYAML)))
	require.NoError(t, err)

	var out bytes.Buffer
	err = report(context.Background(), s.api, a, false, &out)

	require.ErrorIs(t, err, errStepRejected)
	assert.Contains(t, err.Error(), "photo")
	assert.Contains(t, out.String(), reportflow.MessagePhotoRequired)

	list, err := s.api.GetAnnouncements(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReport_MissingContactStopsBeforeSubmit(t *testing.T) {
	s := newStack(t)
	a := &Answers{
		Photo:    writeFile(t, "rex.png", testutil.PNG),
		Species:  "DOG",
		Breed:    "Beagle",
		Sex:      "MALE",
		Location: &Location{Latitude: 1, Longitude: 2},
	}

	var out bytes.Buffer
	err := report(context.Background(), s.api, a, false, &out)

	require.ErrorIs(t, err, errStepRejected)
	assert.Contains(t, err.Error(), "contact")
	assert.Contains(t, out.String(), reportflow.MessageFixErrors)

	list, err := s.api.GetAnnouncements(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReport_ServerRejectionIsReturned(t *testing.T) {
	s := newStack(t)
	a := &Answers{
		Photo:   writeFile(t, "rex.png", testutil.PNG),
		Species: "DOG",
		Breed:   "Beagle",
		Sex:     "MALE",
		Email:   "owner@example.com",
	}

	err := report(context.Background(), s.api, a, false, &bytes.Buffer{})

	var subErr *reportflow.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, reportflow.ErrorValidation, subErr.Type)
	assert.Contains(t, subErr.Message, "locationLatitude")
}

func TestFileMetadata(t *testing.T) {
	path := writeFile(t, "rex.png", testutil.PNG)

	md, err := fileMetadata{}.ExtractMetadata(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "rex.png", md.Filename)
	assert.Equal(t, int64(len(testutil.PNG)), md.SizeBytes)
	assert.Equal(t, "image/png", md.MimeType)

	_, err = fileMetadata{}.ExtractMetadata(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestStaticGeolocation(t *testing.T) {
	ctx := context.Background()

	off := staticGeolocation{}
	assert.Equal(t, reportflow.PermissionDenied, off.RequestPermission(ctx))
	coords, err := off.CurrentCoordinates(ctx)
	assert.NoError(t, err)
	assert.Nil(t, coords)

	on := staticGeolocation{coords: &reportflow.Coordinates{Latitude: 1, Longitude: 2}}
	assert.Equal(t, reportflow.PermissionGranted, on.CurrentPermissionState(ctx))
	coords, err = on.CurrentCoordinates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, coords.Longitude)
}

func TestPrintAnnouncements(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printAnnouncements(&out, []reportflow.Announcement{
		{ID: "a1", Status: "MISSING", Species: "DOG", Breed: "Labrador", LastSeenDate: "2025-12-03", PetName: "Rex"},
	}))

	assert.Contains(t, out.String(), "LAST SEEN")
	assert.Contains(t, out.String(), "Labrador")
}
