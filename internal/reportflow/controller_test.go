package reportflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	c        *reportflow.Controller
	svc      *fakeService
	metadata *fakeMetadata
	geo      *fakeGeo
	clip     *fakeClipboard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		svc:      newFakeService(),
		metadata: newFakeMetadata(),
		geo:      &fakeGeo{state: reportflow.PermissionGranted, coords: &reportflow.Coordinates{Latitude: 52.2297, Longitude: 21.0122}},
		clip:     &fakeClipboard{},
	}
	c, err := reportflow.NewController(reportflow.Dependencies{
		Service:       h.svc,
		Geolocation:   h.geo,
		PhotoMetadata: h.metadata,
		Clipboard:     h.clip,
		Clock:         fixedClock,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	h.c = c
	return h
}

func (h *harness) dispatch(t *testing.T, intents ...reportflow.Intent) {
	t.Helper()
	for _, in := range intents {
		require.NoError(t, h.c.Dispatch(context.Background(), in), "%T", in)
	}
}

func (h *harness) selectPhoto(t *testing.T, handle string) {
	t.Helper()
	h.dispatch(t, reportflow.PhotoSelected{Handle: handle})
	h.c.Wait()
}

// toContact walks a valid report up to the Contact step
func (h *harness) toContact(t *testing.T) {
	t.Helper()
	h.dispatch(t, reportflow.ContinueClicked{})
	h.selectPhoto(t, "/photos/rex.jpg")
	h.dispatch(t,
		reportflow.ContinueClicked{},
		reportflow.SpeciesSelected{Value: "DOG"},
		reportflow.BreedChanged{Value: "Labrador"},
		reportflow.SexSelected{Value: "MALE"},
		reportflow.RequestGPS{},
		reportflow.ContinueClicked{},
	)
	require.Equal(t, reportflow.StepContact, h.c.CurrentStep())
	h.c.DrainEffects()
}

func toasts(effects []reportflow.Effect) []string {
	var out []string
	for _, e := range effects {
		if t, ok := e.(reportflow.ShowToast); ok {
			out = append(out, t.Message)
		}
	}
	return out
}

func TestController_RequiresServiceAndMetadata(t *testing.T) {
	_, err := reportflow.NewController(reportflow.Dependencies{PhotoMetadata: newFakeMetadata()})
	assert.ErrorIs(t, err, reportflow.ErrMissingService)

	_, err = reportflow.NewController(reportflow.Dependencies{Service: newFakeService()})
	assert.ErrorIs(t, err, reportflow.ErrMissingPhotoMetadata)
}

func TestController_CompleteReport(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, reportflow.MicrochipChanged{Value: "985-112-345"}, reportflow.ContinueClicked{})
	h.selectPhoto(t, "/photos/rex.jpg")
	h.dispatch(t,
		reportflow.ContinueClicked{},
		reportflow.SpeciesSelected{Value: "DOG"},
		reportflow.BreedChanged{Value: "Labrador"},
		reportflow.SexSelected{Value: "MALE"},
		reportflow.AgeChanged{Value: "4"},
		reportflow.RequestGPS{},
		reportflow.ContinueClicked{},
		reportflow.EmailChanged{Value: "owner@example.com"},
		reportflow.ContinueClicked{},
	)

	assert.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
	assert.Equal(t, reportflow.SummaryState{AnnouncementID: "a1b2c3", ManagementPassword: "123456"}, h.c.SummaryState())

	want := []reportflow.Effect{
		reportflow.NavigatedForward{From: reportflow.StepMicrochip, To: reportflow.StepPhoto},
		reportflow.NavigatedForward{From: reportflow.StepPhoto, To: reportflow.StepDescription},
		reportflow.NavigatedForward{From: reportflow.StepDescription, To: reportflow.StepContact},
		reportflow.NavigatedForward{From: reportflow.StepContact, To: reportflow.StepSummary},
	}
	if diff := cmp.Diff(want, h.c.DrainEffects()); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}

	req := h.svc.lastCreate(t)
	assert.Equal(t, "985112345", req.MicrochipNumber)
	assert.Equal(t, 4, *req.Age)
	assert.Equal(t, 52.2297, *req.LocationLatitude)
	require.Equal(t, 1, h.svc.uploadCount())
	assert.Equal(t, "/photos/rex.jpg", h.svc.uploads[0].Photo.Handle)

	h.dispatch(t, reportflow.CopyPasswordClicked{})
	assert.Equal(t, []string{"123456"}, h.clip.copied)
	assert.Equal(t, []string{reportflow.MessagePasswordCopied}, toasts(h.c.DrainEffects()))

	h.dispatch(t, reportflow.CloseClicked{})
	assert.Equal(t, []reportflow.Effect{reportflow.ExitFlow{}}, h.c.DrainEffects())
	assert.Equal(t, reportflow.StepMicrochip, h.c.CurrentStep())
	assert.Empty(t, h.c.Snapshot().ManagementPassword)
}

func TestController_EndToEndWithoutPhoto(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t,
		reportflow.ContinueClicked{},
		reportflow.NavigateNext{},
		reportflow.LastSeenDateChanged{Date: time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)},
		reportflow.SpeciesSelected{Value: "DOG"},
		reportflow.BreedChanged{Value: "Labrador"},
		reportflow.SexSelected{Value: "MALE"},
		reportflow.LatitudeChanged{Value: "52.2297"},
		reportflow.LongitudeChanged{Value: "21.0122"},
		reportflow.ContinueClicked{},
		reportflow.PhoneChanged{Value: ""},
		reportflow.EmailChanged{Value: "owner@example.com"},
		reportflow.Submit{},
	)

	require.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
	keys := payloadKeys(t, h.svc.lastCreate(t))
	assert.Equal(t, "DOG", keys["species"])
	assert.Equal(t, "MALE", keys["sex"])
	assert.Equal(t, "owner@example.com", keys["email"])
	assert.Equal(t, "MISSING", keys["status"])
	assert.Equal(t, "2025-12-03", keys["lastSeenDate"])
	assert.NotContains(t, keys, "phone")
	assert.Zero(t, h.svc.uploadCount())
}

func TestController_ContactRequiresPhoneOrEmail(t *testing.T) {
	h := newHarness(t)
	h.toContact(t)

	h.dispatch(t, reportflow.ContinueClicked{})

	assert.Equal(t, reportflow.StepContact, h.c.CurrentStep())
	assert.Zero(t, h.svc.createCount())
	assert.Equal(t, []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessageFixErrors}}, h.c.DrainEffects())
	assert.Equal(t, map[reportflow.Field]string{reportflow.FieldContact: reportflow.MessageContactRequired}, h.c.ContactState().Errors)

	h.dispatch(t, reportflow.PhoneChanged{Value: "600 100 200"})
	assert.Empty(t, h.c.ContactState().Errors)

	h.dispatch(t, reportflow.ContinueClicked{})
	assert.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
	assert.Equal(t, 1, h.svc.createCount())
}

func TestController_ContactFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		email string
		want  map[reportflow.Field]string
	}{
		{name: "short phone", phone: "123-45", want: map[reportflow.Field]string{reportflow.FieldPhone: reportflow.MessagePhoneTooShort}},
		{name: "long phone", phone: "+48 600 100 200 300", want: map[reportflow.Field]string{reportflow.FieldPhone: reportflow.MessagePhoneTooLong}},
		{name: "bad email", email: "owner@", want: map[reportflow.Field]string{reportflow.FieldEmail: reportflow.MessageEmailInvalid}},
		{
			name:  "both invalid",
			phone: "12",
			email: "a b@c.d",
			want: map[reportflow.Field]string{
				reportflow.FieldPhone: reportflow.MessagePhoneTooShort,
				reportflow.FieldEmail: reportflow.MessageEmailInvalid,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.toContact(t)

			h.dispatch(t,
				reportflow.PhoneChanged{Value: tt.phone},
				reportflow.EmailChanged{Value: tt.email},
				reportflow.ContinueClicked{},
			)

			assert.Equal(t, tt.want, h.c.ContactState().Errors)
			assert.Zero(t, h.svc.createCount())
			assert.Empty(t, h.c.Snapshot().Email)
		})
	}
}

func TestController_PartialSuccessKeepsCredentials(t *testing.T) {
	h := newHarness(t)
	h.svc.uploadErr = reportflow.NetworkError(errors.New("reset by peer"))
	h.toContact(t)

	h.dispatch(t, reportflow.EmailChanged{Value: "owner@example.com"}, reportflow.ContinueClicked{})

	assert.Equal(t, reportflow.StepContact, h.c.CurrentStep())
	state := h.c.ContactState()
	require.NotNil(t, state.Error)
	assert.Equal(t, reportflow.PhaseUpload, state.Error.Phase)
	assert.False(t, state.IsSubmitting)

	snap := h.c.Snapshot()
	assert.Equal(t, "a1b2c3", snap.AnnouncementID)
	assert.Equal(t, "123456", snap.ManagementPassword)
	assert.Equal(t, []string{reportflow.MessagePhotoUploadFailed}, toasts(h.c.DrainEffects()))
}

func TestController_RetryRunsSubmissionAgain(t *testing.T) {
	h := newHarness(t)
	h.svc.createErr = reportflow.ServerError(502)
	h.toContact(t)

	h.dispatch(t, reportflow.EmailChanged{Value: "owner@example.com"}, reportflow.ContinueClicked{})
	require.NotNil(t, h.c.ContactState().Error)
	assert.Equal(t, reportflow.ErrorServer, h.c.ContactState().Error.Type)
	assert.Empty(t, h.c.Snapshot().AnnouncementID)
	assert.Equal(t, []string{reportflow.MessageServer}, toasts(h.c.DrainEffects()))

	h.svc.createErr = nil
	h.dispatch(t, reportflow.RetryClicked{})

	assert.Equal(t, 2, h.svc.createCount())
	assert.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
	assert.Nil(t, h.c.ContactState().Error)
}

func TestController_SecondContinueDuringSubmitIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.toContact(t)
	h.dispatch(t, reportflow.EmailChanged{Value: "owner@example.com"})
	h.svc.entered = make(chan struct{}, 1)
	h.svc.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- h.c.Dispatch(context.Background(), reportflow.ContinueClicked{})
	}()

	select {
	case <-h.svc.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("create was not called")
	}
	assert.True(t, h.c.IsSubmitting())
	assert.True(t, h.c.ContactState().IsSubmitting)

	h.dispatch(t, reportflow.ContinueClicked{}, reportflow.Submit{})
	close(h.svc.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, h.svc.createCount())
	assert.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
}

func TestController_BackPreservesDraft(t *testing.T) {
	h := newHarness(t)
	h.toContact(t)
	h.dispatch(t,
		reportflow.PhoneChanged{Value: "600100200"},
		reportflow.RewardChanged{Value: "cake"},
		reportflow.BackClicked{},
	)
	require.Equal(t, reportflow.StepDescription, h.c.CurrentStep())
	before := h.c.Snapshot()

	// enter each earlier step and leave it without editing
	h.dispatch(t, reportflow.BackClicked{}, reportflow.BackClicked{})
	require.Equal(t, reportflow.StepMicrochip, h.c.CurrentStep())
	after := h.c.Snapshot()

	if diff := cmp.Diff(before, after, cmpIgnoreStep()); diff != "" {
		t.Errorf("back navigation changed data (-before +after):\n%s", diff)
	}
	assert.Equal(t, "600100200", after.Phone)
	assert.Equal(t, "cake", after.Reward)

	want := []reportflow.Effect{
		reportflow.NavigatedBack{From: reportflow.StepContact, To: reportflow.StepDescription},
		reportflow.NavigatedBack{From: reportflow.StepDescription, To: reportflow.StepPhoto},
		reportflow.NavigatedBack{From: reportflow.StepPhoto, To: reportflow.StepMicrochip},
	}
	if diff := cmp.Diff(want, h.c.DrainEffects()); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestController_BackKeepsInvalidDescriptionDraft(t *testing.T) {
	h := newHarness(t)
	h.toContact(t)
	h.dispatch(t,
		reportflow.BackClicked{},
		reportflow.AgeChanged{Value: "4"},
		reportflow.LatitudeChanged{Value: "52.2"},
		reportflow.LongitudeChanged{Value: "21.0"},
		reportflow.ContinueClicked{},
	)
	require.Equal(t, reportflow.StepContact, h.c.CurrentStep())

	h.dispatch(t,
		reportflow.BackClicked{},
		reportflow.BreedChanged{Value: ""},
		reportflow.PetNameChanged{Value: "Rex"},
		reportflow.AgeChanged{Value: "4a"},
		reportflow.LatitudeChanged{Value: "52.2x"},
		reportflow.BackClicked{},
	)

	snap := h.c.Snapshot()
	assert.Equal(t, reportflow.StepPhoto, snap.CurrentStep)
	assert.Empty(t, snap.Breed)
	assert.Equal(t, "Rex", snap.PetName)
	require.NotNil(t, snap.Age)
	assert.Equal(t, 4, *snap.Age)
	require.NotNil(t, snap.Latitude)
	require.NotNil(t, snap.Longitude)
	assert.Equal(t, 52.2, *snap.Latitude)
	assert.Equal(t, 21.0, *snap.Longitude)

	h.dispatch(t, reportflow.ContinueClicked{})
	require.Equal(t, reportflow.StepDescription, h.c.CurrentStep())

	draft := h.c.DescriptionState().Draft
	assert.Equal(t, "4a", draft.Age)
	assert.Equal(t, "52.2x", draft.Latitude)
	assert.Equal(t, "21.0", draft.Longitude)
	assert.Equal(t, "Rex", draft.PetName)
}

func TestController_BackClearsEmptiedDescriptionValues(t *testing.T) {
	h := newHarness(t)
	h.toContact(t)
	h.dispatch(t,
		reportflow.BackClicked{},
		reportflow.AgeChanged{Value: "4"},
		reportflow.ContinueClicked{},
		reportflow.BackClicked{},
		reportflow.AgeChanged{Value: ""},
		reportflow.LatitudeChanged{Value: ""},
		reportflow.LongitudeChanged{Value: ""},
		reportflow.BackClicked{},
	)

	snap := h.c.Snapshot()
	assert.Nil(t, snap.Age)
	assert.Nil(t, snap.Latitude)
	assert.Nil(t, snap.Longitude)
	assert.Equal(t, reportflow.DescriptionInput{}, snap.Input)
}

func TestController_FirstStepBackExitsWithoutSaving(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, reportflow.MicrochipChanged{Value: "123456"}, reportflow.BackClicked{})

	assert.Equal(t, []reportflow.Effect{reportflow.ExitFlow{}}, h.c.DrainEffects())
	assert.Empty(t, h.c.Snapshot().MicrochipNumber)
	assert.Empty(t, h.c.MicrochipState().Number)
}

func TestController_DescriptionValidation(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.UpdateCurrentStep{Step: reportflow.StepDescription})
	h.c.DrainEffects()

	h.dispatch(t,
		reportflow.AgeChanged{Value: "4y"},
		reportflow.LatitudeChanged{Value: "north"},
		reportflow.ContinueClicked{},
	)

	assert.Equal(t, reportflow.StepDescription, h.c.CurrentStep())
	assert.Equal(t, map[reportflow.Field]string{
		reportflow.FieldSpecies:   reportflow.MessageSpeciesRequired,
		reportflow.FieldBreed:     reportflow.MessageBreedRequired,
		reportflow.FieldSex:       reportflow.MessageSexRequired,
		reportflow.FieldAge:       reportflow.MessageAgeDigits,
		reportflow.FieldLatitude:  reportflow.MessageLatitudeInvalid,
		reportflow.FieldLongitude: reportflow.MessageLongitudeMissing,
	}, h.c.DescriptionState().Errors)
	assert.Equal(t, []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessageFixErrors}}, h.c.DrainEffects())
	assert.Empty(t, h.c.Snapshot().Species)

	h.dispatch(t, reportflow.AgeChanged{Value: "41"})
	errs := h.c.DescriptionState().Errors
	assert.NotContains(t, errs, reportflow.FieldAge)
	assert.Contains(t, errs, reportflow.FieldSpecies)

	h.dispatch(t, reportflow.ContinueClicked{})
	assert.Equal(t, reportflow.MessageAgeRange, h.c.DescriptionState().Errors[reportflow.FieldAge])
}

func TestController_DescriptionSpeciesChangeClearsBreedDraft(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t,
		reportflow.UpdateCurrentStep{Step: reportflow.StepDescription},
		reportflow.SpeciesSelected{Value: "DOG"},
		reportflow.BreedChanged{Value: "Labrador"},
		reportflow.SpeciesSelected{Value: "DOG"},
	)
	assert.Equal(t, "Labrador", h.c.DescriptionState().Draft.Breed)

	h.dispatch(t, reportflow.SpeciesSelected{Value: "CAT"})
	assert.Empty(t, h.c.DescriptionState().Draft.Breed)
}

func TestController_DatePicker(t *testing.T) {
	h := newHarness(t)
	today := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)
	h.dispatch(t,
		reportflow.UpdateCurrentStep{Step: reportflow.StepDescription},
		reportflow.LastSeenDateChanged{Date: testNow.AddDate(0, 1, 0)},
	)
	h.c.DrainEffects()
	assert.Equal(t, today, h.c.DescriptionState().Draft.LastSeenDate)

	h.dispatch(t, reportflow.OpenDatePicker{})
	assert.Equal(t, []reportflow.Effect{reportflow.ShowDatePicker{Selected: today, Max: today}}, h.c.DrainEffects())
}

func TestController_GPSPermission(t *testing.T) {
	tests := []struct {
		name        string
		state       reportflow.PermissionState
		requested   reportflow.PermissionState
		wantEffects []reportflow.Effect
		wantLat     string
		wantAsked   int
	}{
		{name: "granted", state: reportflow.PermissionGranted, wantLat: "52.2297"},
		{name: "prompt then granted", state: reportflow.PermissionPrompt, requested: reportflow.PermissionGranted, wantLat: "52.2297", wantAsked: 1},
		{
			name:        "prompt then denied",
			state:       reportflow.PermissionPrompt,
			requested:   reportflow.PermissionDenied,
			wantAsked:   1,
			wantEffects: []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessageLocationDenied}, reportflow.OpenLocationSettings{}},
		},
		{
			name:        "restricted",
			state:       reportflow.PermissionRestricted,
			wantEffects: []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessageLocationDenied}, reportflow.OpenLocationSettings{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.geo.state = tt.state
			h.geo.requested = tt.requested
			h.dispatch(t, reportflow.UpdateCurrentStep{Step: reportflow.StepDescription})
			h.c.DrainEffects()

			h.dispatch(t, reportflow.RequestGPS{})

			assert.Equal(t, tt.wantEffects, h.c.DrainEffects())
			assert.Equal(t, tt.wantLat, h.c.DescriptionState().Draft.Latitude)
			assert.Equal(t, tt.wantAsked, h.geo.requests)
			assert.False(t, h.c.DescriptionState().Locating)
		})
	}
}

func TestController_GPSWithoutFix(t *testing.T) {
	h := newHarness(t)
	h.geo.coords = nil
	h.dispatch(t, reportflow.UpdateCurrentStep{Step: reportflow.StepDescription}, reportflow.RequestGPS{})

	assert.Equal(t, []string{reportflow.MessageLocationFailed}, toasts(h.c.DrainEffects()))
	assert.Empty(t, h.c.DescriptionState().Draft.Latitude)
}

func TestController_PhotoRequiredToContinue(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.ContinueClicked{})
	h.c.DrainEffects()

	h.dispatch(t, reportflow.ContinueClicked{})

	assert.Equal(t, reportflow.StepPhoto, h.c.CurrentStep())
	assert.Equal(t, []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessagePhotoRequired}}, h.c.DrainEffects())
}

func TestController_PhotoStateMachine(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.ContinueClicked{})
	gate := h.metadata.block("/photos/a.jpg")

	h.dispatch(t, reportflow.PhotoSelected{Handle: "/photos/a.jpg"})
	assert.Equal(t, reportflow.PhotoLoading, h.c.PhotoState().Status)

	close(gate)
	h.c.Wait()
	state := h.c.PhotoState()
	assert.Equal(t, reportflow.PhotoConfirmed, state.Status)
	require.NotNil(t, state.Attachment)
	assert.Equal(t, "/photos/a.jpg", state.Attachment.Filename)
	require.NotNil(t, h.c.Snapshot().Photo)

	h.dispatch(t, reportflow.RemovePhoto{})
	assert.Equal(t, reportflow.PhotoEmpty, h.c.PhotoState().Status)
	assert.Nil(t, h.c.Snapshot().Photo)
}

func TestController_PhotoFailureReturnsToEmpty(t *testing.T) {
	h := newHarness(t)
	h.metadata.errs["/photos/broken.jpg"] = errors.New("unreadable")
	h.dispatch(t, reportflow.ContinueClicked{})
	h.c.DrainEffects()

	h.selectPhoto(t, "/photos/broken.jpg")

	assert.Equal(t, reportflow.PhotoEmpty, h.c.PhotoState().Status)
	assert.Nil(t, h.c.Snapshot().Photo)
	assert.Equal(t, []reportflow.Effect{reportflow.ShowToast{Message: reportflow.MessagePhotoFailed}}, h.c.DrainEffects())
}

func TestController_NewPhotoCancelsPreviousExtraction(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.ContinueClicked{})
	h.metadata.block("/photos/slow.jpg")

	h.dispatch(t, reportflow.PhotoSelected{Handle: "/photos/slow.jpg"})
	h.selectPhoto(t, "/photos/fast.jpg")

	state := h.c.PhotoState()
	assert.Equal(t, reportflow.PhotoConfirmed, state.Status)
	assert.Equal(t, "/photos/fast.jpg", state.Attachment.Handle)
	assert.Equal(t, "/photos/fast.jpg", h.c.Snapshot().Photo.Handle)
	assert.Empty(t, toasts(h.c.DrainEffects()))
}

func TestController_RemoveCancelsExtraction(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.ContinueClicked{})
	h.metadata.block("/photos/slow.jpg")

	h.dispatch(t, reportflow.PhotoSelected{Handle: "/photos/slow.jpg"}, reportflow.RemovePhoto{})
	h.c.Wait()

	assert.Equal(t, reportflow.PhotoEmpty, h.c.PhotoState().Status)
	assert.Nil(t, h.c.Snapshot().Photo)
}

func TestController_ExitDropsInFlightExtraction(t *testing.T) {
	h := newHarness(t)
	h.metadata.ignoreCancel = true
	gate := h.metadata.block("/photos/late.jpg")

	h.dispatch(t,
		reportflow.UpdateCurrentStep{Step: reportflow.StepPhoto},
		reportflow.PhotoSelected{Handle: "/photos/late.jpg"},
		reportflow.UpdateCurrentStep{Step: reportflow.StepMicrochip},
	)
	require.Equal(t, reportflow.PhotoLoading, h.c.PhotoState().Status)
	h.c.DrainEffects()

	h.dispatch(t, reportflow.BackClicked{})
	close(gate)
	h.c.Wait()

	assert.Equal(t, []reportflow.Effect{reportflow.ExitFlow{}}, h.c.DrainEffects())
	assert.Nil(t, h.c.Snapshot().Photo)
	assert.Equal(t, reportflow.PhotoEmpty, h.c.PhotoState().Status)
}

func TestController_FlowLevelNavigation(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, reportflow.UpdateCurrentStep{Step: reportflow.StepSummary}, reportflow.NavigateNext{})
	assert.Equal(t, reportflow.StepSummary, h.c.CurrentStep())
	assert.Equal(t, []reportflow.Effect{
		reportflow.NavigatedForward{From: reportflow.StepMicrochip, To: reportflow.StepSummary},
	}, h.c.DrainEffects())

	h.dispatch(t, reportflow.NavigateBack{})
	assert.Equal(t, reportflow.StepContact, h.c.CurrentStep())

	h.dispatch(t, reportflow.UpdateCurrentStep{Step: reportflow.StepMicrochip}, reportflow.NavigateBack{})
	assert.Equal(t, []reportflow.Effect{
		reportflow.NavigatedBack{From: reportflow.StepSummary, To: reportflow.StepContact},
		reportflow.NavigatedBack{From: reportflow.StepContact, To: reportflow.StepMicrochip},
		reportflow.ExitFlow{},
	}, h.c.DrainEffects())

	err := h.c.Dispatch(context.Background(), reportflow.UpdateCurrentStep{Step: reportflow.Step(42)})
	assert.ErrorIs(t, err, reportflow.ErrUnsupportedIntent)
}

func TestController_UnsupportedIntent(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.c.Dispatch(context.Background(), reportflow.EmailChanged{Value: "x"}), reportflow.ErrUnsupportedIntent)
	assert.ErrorIs(t, h.c.Dispatch(context.Background(), reportflow.Submit{}), reportflow.ErrUnsupportedIntent)
	assert.Empty(t, h.c.DrainEffects())
}

func TestController_EffectsDeliveredOnce(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, reportflow.ContinueClicked{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := h.c.NextEffect(ctx)
	require.NoError(t, err)
	assert.Equal(t, reportflow.NavigatedForward{From: reportflow.StepMicrochip, To: reportflow.StepPhoto}, e)
	assert.Empty(t, h.c.DrainEffects())

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, err = h.c.NextEffect(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_NextEffectWakesOnPush(t *testing.T) {
	h := newHarness(t)

	got := make(chan reportflow.Effect, 1)
	go func() {
		e, err := h.c.NextEffect(context.Background())
		if err == nil {
			got <- e
		}
	}()

	h.dispatch(t, reportflow.ContinueClicked{})

	select {
	case e := <-got:
		assert.IsType(t, reportflow.NavigatedForward{}, e)
	case <-time.After(2 * time.Second):
		t.Fatal("no effect delivered")
	}
}

func cmpIgnoreStep() cmp.Option {
	return cmp.FilterPath(func(p cmp.Path) bool {
		return p.String() == "CurrentStep"
	}, cmp.Ignore())
}
