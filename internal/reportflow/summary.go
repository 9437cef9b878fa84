package reportflow

import (
	"context"
	"sync"

	"github.com/petspot/petspot-backend/pkg/logger"
)

// SummaryState is the Summary step's view
type SummaryState struct {
	AnnouncementID     string
	ManagementPassword string
}

// SummaryForm shows the created announcement and its management password
type SummaryForm struct {
	mu        sync.Mutex
	flow      *Flow
	nav       navigator
	clipboard ClipboardCapability
	logger    *logger.Logger
	state     SummaryState
}

func newSummaryForm(flow *Flow, nav navigator, clipboard ClipboardCapability, log *logger.Logger) *SummaryForm {
	return &SummaryForm{flow: flow, nav: nav, clipboard: clipboard, logger: log}
}

// State returns a copy of the step's view
func (f *SummaryForm) State() SummaryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *SummaryForm) onEnter() {
	snap := f.flow.Snapshot()
	f.mu.Lock()
	f.state = SummaryState{AnnouncementID: snap.AnnouncementID, ManagementPassword: snap.ManagementPassword}
	f.mu.Unlock()
}

func (f *SummaryForm) handle(_ context.Context, in Intent) error {
	switch in.(type) {
	case CopyPasswordClicked:
		password := f.State().ManagementPassword
		if f.clipboard != nil && password != "" {
			if err := f.clipboard.CopyText(password); err != nil {
				f.logger.Debug().Err(err).Msg("clipboard copy failed")
			}
		}
		toast(f.nav, MessagePasswordCopied)
	case CloseClicked, BackClicked:
		f.nav.exit()
	default:
		return ErrUnsupportedIntent
	}
	return nil
}
