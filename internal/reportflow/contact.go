package reportflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/petspot/petspot-backend/pkg/validators"
)

// ContactDraft holds the Contact step's inputs
type ContactDraft struct {
	Phone  string
	Email  string
	Reward string
}

// ContactState is the Contact step's view. Error is the outcome of the last
// submission attempt and stays set until the next attempt.
type ContactState struct {
	Draft        ContactDraft
	Errors       map[Field]string
	IsSubmitting bool
	Error        *SubmissionError
}

// ContactForm collects contact details and submits the report
type ContactForm struct {
	mu       sync.Mutex
	flow     *Flow
	nav      navigator
	pipeline *Pipeline
	draft    ContactDraft
	errors   fieldErrors
	lastErr  *SubmissionError
}

func newContactForm(flow *Flow, nav navigator, pipeline *Pipeline) *ContactForm {
	return &ContactForm{flow: flow, nav: nav, pipeline: pipeline, errors: fieldErrors{}}
}

// State returns a copy of the step's view
func (f *ContactForm) State() ContactState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ContactState{
		Draft:        f.draft,
		Errors:       f.errors.clone(),
		IsSubmitting: f.pipeline.IsSubmitting(),
		Error:        f.lastErr,
	}
}

func (f *ContactForm) onEnter() {
	snap := f.flow.Snapshot()
	f.mu.Lock()
	f.draft = ContactDraft{Phone: snap.Phone, Email: snap.Email, Reward: snap.Reward}
	f.errors = fieldErrors{}
	f.lastErr = nil
	f.mu.Unlock()
}

func (f *ContactForm) handle(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case PhoneChanged:
		f.edit(func(d *ContactDraft) { d.Phone = in.Value }, FieldPhone, FieldContact)
	case EmailChanged:
		f.edit(func(d *ContactDraft) { d.Email = in.Value }, FieldEmail, FieldContact)
	case RewardChanged:
		f.edit(func(d *ContactDraft) { d.Reward = validators.Truncate(in.Value, MaxRewardLength) }, FieldReward)
	case ContinueClicked, Submit, RetryClicked:
		f.submit(ctx)
	case BackClicked:
		d := f.currentDraft()
		f.flow.UpdateContactDetails(strings.TrimSpace(d.Phone), strings.TrimSpace(d.Email), d.Reward)
		f.nav.retreat(StepContact)
	default:
		return ErrUnsupportedIntent
	}
	return nil
}

func (f *ContactForm) edit(fn func(*ContactDraft), fields ...Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.draft)
	for _, field := range fields {
		delete(f.errors, field)
	}
}

func (f *ContactForm) currentDraft() ContactDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// submit validates, merges the draft and runs the pipeline. A call made while
// a submission is running does nothing.
func (f *ContactForm) submit(ctx context.Context) {
	if f.pipeline.IsSubmitting() {
		return
	}

	f.mu.Lock()
	draft := f.draft
	errs := validateContact(draft)
	f.errors = errs
	f.mu.Unlock()

	if len(errs) > 0 {
		toast(f.nav, MessageFixErrors)
		return
	}

	snap := f.flow.UpdateContactDetails(strings.TrimSpace(draft.Phone), strings.TrimSpace(draft.Email), draft.Reward)
	result, err := f.pipeline.Submit(ctx, snap)
	if errors.Is(err, ErrSubmissionInProgress) {
		return
	}
	if result != nil {
		f.flow.UpdateAnnouncementResult(result.ID, result.ManagementPassword)
	}

	f.mu.Lock()
	var subErr *SubmissionError
	if err != nil && !errors.As(err, &subErr) {
		subErr = AsSubmissionError(err, PhaseCreate)
	}
	f.lastErr = subErr
	f.mu.Unlock()

	if subErr != nil {
		message := subErr.Message
		if subErr.Phase == PhaseUpload {
			message = MessagePhotoUploadFailed
		}
		toast(f.nav, message)
		return
	}
	f.nav.advance(StepContact)
}

func validateContact(d ContactDraft) fieldErrors {
	errs := fieldErrors{}
	phone, email := strings.TrimSpace(d.Phone), strings.TrimSpace(d.Email)

	if phone == "" && email == "" {
		errs[FieldContact] = MessageContactRequired
		return errs
	}
	if phone != "" {
		switch n := validators.CountDigits(phone); {
		case n < MinPhoneDigits:
			errs[FieldPhone] = MessagePhoneTooShort
		case n > MaxPhoneDigits:
			errs[FieldPhone] = MessagePhoneTooLong
		}
	}
	if email != "" && !validators.IsValidEmail(email) {
		errs[FieldEmail] = MessageEmailInvalid
	}
	return errs
}
