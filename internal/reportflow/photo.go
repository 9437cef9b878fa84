package reportflow

import (
	"context"
	"sync"

	"github.com/petspot/petspot-backend/pkg/logger"
)

// PhotoStatus is the Photo step's state machine
type PhotoStatus string

const (
	PhotoEmpty     PhotoStatus = "EMPTY"
	PhotoLoading   PhotoStatus = "LOADING"
	PhotoConfirmed PhotoStatus = "CONFIRMED"
)

// PhotoState is the Photo step's view
type PhotoState struct {
	Status     PhotoStatus
	Attachment *PhotoAttachment
}

// PhotoForm reads metadata for a picked file in the background. A newer
// selection cancels the running extraction before starting its own.
type PhotoForm struct {
	mu       sync.Mutex
	flow     *Flow
	nav      navigator
	metadata PhotoMetadataCapability
	logger   *logger.Logger
	state    PhotoState

	base       context.Context
	stop       context.CancelFunc
	cancel     context.CancelFunc
	generation uint64
	wg         sync.WaitGroup
}

func newPhotoForm(flow *Flow, nav navigator, metadata PhotoMetadataCapability, log *logger.Logger) *PhotoForm {
	base, stop := context.WithCancel(context.Background())
	return &PhotoForm{
		flow:     flow,
		nav:      nav,
		metadata: metadata,
		logger:   log,
		state:    PhotoState{Status: PhotoEmpty},
		base:     base,
		stop:     stop,
	}
}

// State returns a copy of the step's view
func (f *PhotoForm) State() PhotoState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.state
	if out.Attachment != nil {
		a := *out.Attachment
		out.Attachment = &a
	}
	return out
}

// Wait blocks until no extraction is running
func (f *PhotoForm) Wait() {
	f.wg.Wait()
}

// Close cancels any extraction and waits for it to return
func (f *PhotoForm) Close() {
	f.stop()
	f.wg.Wait()
}

func (f *PhotoForm) onEnter() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
	f.hydrateLocked()
}

// abandon cancels any extraction so it cannot write into the flow afterwards
func (f *PhotoForm) abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
}

// hydrateLocked shows whatever photo the flow holds
func (f *PhotoForm) hydrateLocked() {
	snap := f.flow.Snapshot()
	if snap.Photo == nil {
		f.state = PhotoState{Status: PhotoEmpty}
		return
	}
	f.state = PhotoState{Status: PhotoConfirmed, Attachment: snap.Photo}
}

func (f *PhotoForm) cancelLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
}

func (f *PhotoForm) handle(_ context.Context, in Intent) error {
	switch in := in.(type) {
	case PhotoSelected:
		f.selectPhoto(in.Handle)
	case RemovePhoto:
		f.mu.Lock()
		f.cancelLocked()
		f.state = PhotoState{Status: PhotoEmpty}
		f.flow.ClearPhoto()
		f.mu.Unlock()
	case ContinueClicked:
		f.mu.Lock()
		confirmed := f.state.Status == PhotoConfirmed
		f.mu.Unlock()
		if !confirmed {
			toast(f.nav, MessagePhotoRequired)
			return nil
		}
		f.nav.advance(StepPhoto)
	case BackClicked:
		f.mu.Lock()
		switch f.state.Status {
		case PhotoConfirmed:
			f.flow.UpdatePhoto(*f.state.Attachment)
		case PhotoEmpty:
			f.flow.ClearPhoto()
		case PhotoLoading:
			f.cancelLocked()
			f.hydrateLocked()
		}
		f.mu.Unlock()
		f.nav.retreat(StepPhoto)
	default:
		return ErrUnsupportedIntent
	}
	return nil
}

func (f *PhotoForm) selectPhoto(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelLocked()
	if f.base.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(f.base)
	f.cancel = cancel
	gen := f.generation
	f.state = PhotoState{Status: PhotoLoading}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()
		f.extract(ctx, gen, handle)
	}()
}

func (f *PhotoForm) extract(ctx context.Context, gen uint64, handle string) {
	md, err := f.metadata.ExtractMetadata(ctx, handle)

	f.mu.Lock()
	if gen != f.generation || ctx.Err() != nil {
		f.mu.Unlock()
		return
	}
	f.cancel = nil

	if err != nil {
		f.state = PhotoState{Status: PhotoEmpty}
		f.flow.ClearPhoto()
		f.mu.Unlock()
		f.logger.Warn().Err(err).Str("handle", handle).Msg("photo metadata extraction failed")
		toast(f.nav, MessagePhotoFailed)
		return
	}

	attachment := PhotoAttachment{
		Handle:     handle,
		Filename:   md.Filename,
		SizeBytes:  md.SizeBytes,
		MimeType:   md.MimeType,
		PreviewRef: handle,
	}
	f.state = PhotoState{Status: PhotoConfirmed, Attachment: &attachment}
	f.flow.UpdatePhoto(attachment)
	f.mu.Unlock()
}
