package reportflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 12, 3, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type uploadCall struct {
	ID       string
	Photo    reportflow.PhotoAttachment
	Password string
}

type fakeService struct {
	mu      sync.Mutex
	creates []*reportflow.CreateAnnouncementRequest
	uploads []uploadCall

	result    *reportflow.AnnouncementResult
	createErr error
	uploadErr error

	// when set, CreateAnnouncement signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		result: &reportflow.AnnouncementResult{ID: "a1b2c3", ManagementPassword: "123456"},
	}
}

func (s *fakeService) CreateAnnouncement(ctx context.Context, req *reportflow.CreateAnnouncementRequest) (*reportflow.AnnouncementResult, error) {
	s.mu.Lock()
	s.creates = append(s.creates, req)
	entered, release := s.entered, s.release
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.createErr != nil {
		return nil, s.createErr
	}
	r := *s.result
	return &r, nil
}

func (s *fakeService) UploadPhoto(_ context.Context, id string, photo reportflow.PhotoAttachment, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, uploadCall{ID: id, Photo: photo, Password: password})
	return s.uploadErr
}

func (s *fakeService) GetAnnouncements(context.Context, *reportflow.LocationFilter) ([]reportflow.Announcement, error) {
	return nil, nil
}

func (s *fakeService) GetAnnouncementByID(context.Context, string) (*reportflow.Announcement, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeService) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creates)
}

func (s *fakeService) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

func (s *fakeService) lastCreate(t *testing.T) *reportflow.CreateAnnouncementRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.creates)
	return s.creates[len(s.creates)-1]
}

type fakeMetadata struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	// handles listed here block until the gate closes or the call is cancelled
	gates map[string]chan struct{}
	// ignoreCancel makes gated calls run to completion even after cancellation
	ignoreCancel bool
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{errs: map[string]error{}, gates: map[string]chan struct{}{}}
}

func (m *fakeMetadata) ExtractMetadata(ctx context.Context, handle string) (reportflow.PhotoMetadata, error) {
	m.mu.Lock()
	m.calls = append(m.calls, handle)
	gate := m.gates[handle]
	err := m.errs[handle]
	ignoreCancel := m.ignoreCancel
	m.mu.Unlock()

	if gate != nil && ignoreCancel {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return reportflow.PhotoMetadata{}, ctx.Err()
		}
	}
	if err != nil {
		return reportflow.PhotoMetadata{}, err
	}
	return reportflow.PhotoMetadata{Filename: handle, SizeBytes: 2048, MimeType: "image/jpeg"}, nil
}

func (m *fakeMetadata) block(handle string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates[handle] = gate
	return gate
}

type fakeGeo struct {
	state     reportflow.PermissionState
	requested reportflow.PermissionState
	coords    *reportflow.Coordinates
	err       error
	requests  int
}

func (g *fakeGeo) CurrentPermissionState(context.Context) reportflow.PermissionState {
	return g.state
}

func (g *fakeGeo) RequestPermission(context.Context) reportflow.PermissionState {
	g.requests++
	return g.requested
}

func (g *fakeGeo) CurrentCoordinates(context.Context) (*reportflow.Coordinates, error) {
	return g.coords, g.err
}

type fakeClipboard struct {
	copied []string
	err    error
}

func (c *fakeClipboard) CopyText(text string) error {
	c.copied = append(c.copied, text)
	return c.err
}
