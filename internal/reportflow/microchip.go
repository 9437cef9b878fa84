package reportflow

import (
	"context"
	"sync"
)

// MicrochipState is the Microchip step's draft
type MicrochipState struct {
	Number string
}

// MicrochipForm is the first step. The number is optional.
type MicrochipForm struct {
	mu    sync.Mutex
	flow  *Flow
	nav   navigator
	state MicrochipState
}

func newMicrochipForm(flow *Flow, nav navigator) *MicrochipForm {
	return &MicrochipForm{flow: flow, nav: nav}
}

// State returns a copy of the draft
func (f *MicrochipForm) State() MicrochipState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *MicrochipForm) onEnter() {
	snap := f.flow.Snapshot()
	f.mu.Lock()
	f.state = MicrochipState{Number: snap.MicrochipNumber}
	f.mu.Unlock()
}

func (f *MicrochipForm) handle(_ context.Context, in Intent) error {
	switch in := in.(type) {
	case MicrochipChanged:
		f.mu.Lock()
		f.state.Number = normalizeMicrochip(in.Value)
		f.mu.Unlock()
	case ContinueClicked:
		f.flow.UpdateMicrochip(f.State().Number)
		f.nav.advance(StepMicrochip)
	case BackClicked:
		// leaving from the first step abandons the flow; the draft is dropped
		f.nav.retreat(StepMicrochip)
	default:
		return ErrUnsupportedIntent
	}
	return nil
}
