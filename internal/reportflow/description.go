package reportflow

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/validators"
)

// Sex values accepted by the Description step
var sexValues = []string{"MALE", "FEMALE", "UNKNOWN"}

// DescriptionDraft holds the Description step's inputs as typed. Age and
// coordinates stay text until Continue parses them.
type DescriptionDraft struct {
	LastSeenDate time.Time
	PetName      string
	Species      string
	Breed        string
	Sex          string
	Age          string
	Description  string
	Latitude     string
	Longitude    string
}

// DescriptionState is the Description step's view
type DescriptionState struct {
	Draft    DescriptionDraft
	Errors   map[Field]string
	Locating bool
}

// DescriptionForm collects the animal description and where it was last seen
type DescriptionForm struct {
	mu       sync.Mutex
	flow     *Flow
	nav      navigator
	geo      GeolocationCapability
	now      func() time.Time
	logger   *logger.Logger
	draft    DescriptionDraft
	errors   fieldErrors
	locating bool
}

func newDescriptionForm(flow *Flow, nav navigator, geo GeolocationCapability, now func() time.Time, log *logger.Logger) *DescriptionForm {
	return &DescriptionForm{
		flow:   flow,
		nav:    nav,
		geo:    geo,
		now:    now,
		logger: log,
		errors: fieldErrors{},
	}
}

// State returns a copy of the step's view
func (f *DescriptionForm) State() DescriptionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DescriptionState{Draft: f.draft, Errors: f.errors.clone(), Locating: f.locating}
}

func (f *DescriptionForm) onEnter() {
	snap := f.flow.Snapshot()
	draft := DescriptionDraft{
		LastSeenDate: snap.LastSeenDate,
		PetName:      snap.PetName,
		Species:      snap.Species,
		Breed:        snap.Breed,
		Sex:          snap.Sex,
		Age:          snap.Input.Age,
		Description:  snap.Description,
		Latitude:     snap.Input.Latitude,
		Longitude:    snap.Input.Longitude,
	}

	f.mu.Lock()
	f.draft = draft
	f.errors = fieldErrors{}
	f.mu.Unlock()
}

func (f *DescriptionForm) handle(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case LastSeenDateChanged:
		f.edit(FieldLastSeenDate, func(d *DescriptionDraft) { d.LastSeenDate = clampDate(in.Date, f.now()) })
	case OpenDatePicker:
		f.mu.Lock()
		selected := f.draft.LastSeenDate
		f.mu.Unlock()
		f.nav.emit(ShowDatePicker{Selected: selected, Max: validators.StartOfDay(f.now())})
	case PetNameChanged:
		f.edit(FieldPetName, func(d *DescriptionDraft) { d.PetName = in.Value })
	case SpeciesSelected:
		f.edit(FieldSpecies, func(d *DescriptionDraft) {
			if d.Species != in.Value {
				d.Breed = ""
			}
			d.Species = in.Value
		})
	case BreedChanged:
		f.edit(FieldBreed, func(d *DescriptionDraft) { d.Breed = in.Value })
	case SexSelected:
		f.edit(FieldSex, func(d *DescriptionDraft) { d.Sex = in.Value })
	case AgeChanged:
		f.edit(FieldAge, func(d *DescriptionDraft) { d.Age = in.Value })
	case DescriptionChanged:
		f.edit(FieldDescription, func(d *DescriptionDraft) {
			d.Description = validators.Truncate(in.Value, MaxDescriptionLength)
		})
	case LatitudeChanged:
		f.edit(FieldLatitude, func(d *DescriptionDraft) { d.Latitude = in.Value })
	case LongitudeChanged:
		f.edit(FieldLongitude, func(d *DescriptionDraft) { d.Longitude = in.Value })
	case RequestGPS:
		f.requestGPS(ctx)
	case ContinueClicked:
		f.onContinue()
	case BackClicked:
		f.onBack()
	default:
		return ErrUnsupportedIntent
	}
	return nil
}

func (f *DescriptionForm) edit(field Field, fn func(*DescriptionDraft)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.draft)
	delete(f.errors, field)
}

func (f *DescriptionForm) onContinue() {
	f.mu.Lock()
	draft := f.draft
	errs := validateDescription(draft)
	f.errors = errs
	f.mu.Unlock()

	if len(errs) > 0 {
		toast(f.nav, MessageFixErrors)
		return
	}
	f.flow.UpdateAnimalDescription(toAnimalDescription(draft))
	f.nav.advance(StepDescription)
}

// onBack stores the draft unvalidated. Text that does not parse is kept as
// input while the last parsed age or location stays in place.
func (f *DescriptionForm) onBack() {
	f.mu.Lock()
	draft := f.draft
	f.mu.Unlock()

	f.flow.UpdateAnimalDescription(partialDescription(draft, f.flow.Snapshot()))
	f.nav.retreat(StepDescription)
}

func (f *DescriptionForm) requestGPS(ctx context.Context) {
	if f.geo == nil {
		toast(f.nav, MessageLocationFailed)
		return
	}

	f.mu.Lock()
	if f.locating {
		f.mu.Unlock()
		return
	}
	f.locating = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.locating = false
		f.mu.Unlock()
	}()

	state := f.geo.CurrentPermissionState(ctx)
	if state == PermissionPrompt {
		state = f.geo.RequestPermission(ctx)
	}
	if state != PermissionGranted {
		toast(f.nav, MessageLocationDenied)
		f.nav.emit(OpenLocationSettings{})
		return
	}

	coords, err := f.geo.CurrentCoordinates(ctx)
	if err != nil || coords == nil {
		if err != nil {
			f.logger.Warn().Err(err).Msg("current coordinates unavailable")
		}
		toast(f.nav, MessageLocationFailed)
		return
	}

	f.mu.Lock()
	f.draft.Latitude = formatCoordinate(coords.Latitude)
	f.draft.Longitude = formatCoordinate(coords.Longitude)
	delete(f.errors, FieldLatitude)
	delete(f.errors, FieldLongitude)
	f.mu.Unlock()
}

func validateDescription(d DescriptionDraft) fieldErrors {
	errs := fieldErrors{}
	if strings.TrimSpace(d.Species) == "" {
		errs[FieldSpecies] = MessageSpeciesRequired
	}
	if strings.TrimSpace(d.Breed) == "" {
		errs[FieldBreed] = MessageBreedRequired
	}
	if !validators.IsOneOf(d.Sex, sexValues...) {
		errs[FieldSex] = MessageSexRequired
	}

	if age := strings.TrimSpace(d.Age); age != "" {
		if !validators.IsDigitsOnly(age) {
			errs[FieldAge] = MessageAgeDigits
		} else if _, ok := parseAge(age); !ok {
			errs[FieldAge] = MessageAgeRange
		}
	}

	lat, lng := strings.TrimSpace(d.Latitude), strings.TrimSpace(d.Longitude)
	if lat != "" {
		if _, ok := parseCoordinate(lat); !ok {
			errs[FieldLatitude] = MessageLatitudeInvalid
		}
	}
	if lng != "" {
		if _, ok := parseCoordinate(lng); !ok {
			errs[FieldLongitude] = MessageLongitudeInvalid
		}
	}
	switch {
	case lat != "" && lng == "":
		errs[FieldLongitude] = MessageLongitudeMissing
	case lat == "" && lng != "":
		errs[FieldLatitude] = MessageLatitudeMissing
	}
	return errs
}

func toAnimalDescription(d DescriptionDraft) AnimalDescription {
	out := AnimalDescription{
		LastSeenDate: d.LastSeenDate,
		PetName:      strings.TrimSpace(d.PetName),
		Species:      d.Species,
		Breed:        strings.TrimSpace(d.Breed),
		Sex:          d.Sex,
		Description:  d.Description,
	}
	if age, ok := parseAge(strings.TrimSpace(d.Age)); ok {
		out.Age = &age
	}
	lat, latOK := parseCoordinate(strings.TrimSpace(d.Latitude))
	lng, lngOK := parseCoordinate(strings.TrimSpace(d.Longitude))
	if latOK && lngOK {
		out.Latitude, out.Longitude = &lat, &lng
	}
	out.Input = DescriptionInput{Age: d.Age, Latitude: d.Latitude, Longitude: d.Longitude}
	return out
}

func partialDescription(d DescriptionDraft, prev Snapshot) AnimalDescription {
	out := toAnimalDescription(d)
	if out.Age == nil && strings.TrimSpace(d.Age) != "" {
		out.Age = prev.Age
	}
	if out.Latitude == nil && (strings.TrimSpace(d.Latitude) != "" || strings.TrimSpace(d.Longitude) != "") {
		out.Latitude, out.Longitude = prev.Latitude, prev.Longitude
	}
	return out
}

func parseAge(s string) (int, bool) {
	if !validators.IsDigitsOnly(s) {
		return 0, false
	}
	age, err := strconv.Atoi(s)
	if err != nil || age < 0 || age > MaxAge {
		return 0, false
	}
	return age, true
}

func parseCoordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
