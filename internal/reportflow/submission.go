package reportflow

import (
	"context"
	"sync/atomic"

	"github.com/petspot/petspot-backend/pkg/logger"
)

// Pipeline submits a flow: create the announcement, then upload its photo.
// At most one submission runs at a time.
type Pipeline struct {
	service  AnnouncementService
	inFlight atomic.Bool
	logger   *logger.Logger
}

// NewPipeline creates a submission pipeline
func NewPipeline(service AnnouncementService, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{service: service, logger: log}
}

// IsSubmitting reports whether a submission is running
func (p *Pipeline) IsSubmitting() bool {
	return p.inFlight.Load()
}

// Submit runs both phases. A failed upload still returns the created result
// alongside a *SubmissionError with Phase upload. A call made while another
// is running returns ErrSubmissionInProgress without contacting the service.
func (p *Pipeline) Submit(ctx context.Context, snap Snapshot) (*AnnouncementResult, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer p.inFlight.Store(false)

	req := NewCreateAnnouncementRequest(snap)
	result, err := p.service.CreateAnnouncement(ctx, req)
	if err != nil {
		subErr := AsSubmissionError(err, PhaseCreate)
		p.logger.Warn().
			Str("error_type", string(subErr.Type)).
			Int("status_code", subErr.StatusCode).
			Msg("announcement create failed")
		return nil, subErr
	}

	log := p.logger.WithAnnouncementID(result.ID)
	log.Info().Msg("announcement created")

	if snap.Photo == nil {
		return result, nil
	}

	if err := p.service.UploadPhoto(ctx, result.ID, *snap.Photo, result.ManagementPassword); err != nil {
		subErr := AsSubmissionError(err, PhaseUpload)
		log.Warn().
			Str("error_type", string(subErr.Type)).
			Int("status_code", subErr.StatusCode).
			Msg("photo upload failed after create")
		return result, subErr
	}

	log.Debug().Str("filename", snap.Photo.Filename).Msg("photo uploaded")
	return result, nil
}
