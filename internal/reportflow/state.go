package reportflow

import (
	"strconv"
	"sync"
	"time"

	"github.com/petspot/petspot-backend/pkg/validators"
)

// Field limits applied at the point of entry
const (
	MaxMicrochipDigits   = 15
	MaxDescriptionLength = 500
	MaxRewardLength      = 120
	MaxAge               = 40
)

// PhotoAttachment is a confirmed photo selection
type PhotoAttachment struct {
	Handle     string
	Filename   string
	SizeBytes  int64
	MimeType   string
	PreviewRef string
}

// Snapshot is an immutable view of a flow's collected data
type Snapshot struct {
	CurrentStep     Step
	MicrochipNumber string
	Photo           *PhotoAttachment
	LastSeenDate    time.Time
	PetName         string
	Species         string
	Breed           string
	Sex             string
	Age             *int
	Description     string
	Latitude        *float64
	Longitude       *float64
	Email           string
	Phone           string
	Reward          string

	// Input is the Description step's numeric text as last typed. It
	// survives Back even when it does not parse.
	Input DescriptionInput

	AnnouncementID     string
	ManagementPassword string
}

// HasContact reports whether a phone or email is present
func (s Snapshot) HasContact() bool {
	return s.Phone != "" || s.Email != ""
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Photo != nil {
		p := *s.Photo
		out.Photo = &p
	}
	out.Age = clonePtr(s.Age)
	out.Latitude = clonePtr(s.Latitude)
	out.Longitude = clonePtr(s.Longitude)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DescriptionInput holds the raw age and coordinate text
type DescriptionInput struct {
	Age       string
	Latitude  string
	Longitude string
}

// AnimalDescription is the Description step's draft merged in one update
type AnimalDescription struct {
	LastSeenDate time.Time
	PetName      string
	Species      string
	Breed        string
	Sex          string
	Age          *int
	Latitude     *float64
	Longitude    *float64
	Description  string
	Input        DescriptionInput
}

// Flow owns the state of one report in progress. It is created by the
// Controller and shared with the step forms; nothing else mutates it.
type Flow struct {
	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

// NewFlow creates a flow starting at the first step with today as last-seen date
func NewFlow(now func() time.Time) *Flow {
	if now == nil {
		now = time.Now
	}
	f := &Flow{now: now}
	f.snap = f.initial()
	return f
}

func (f *Flow) initial() Snapshot {
	return Snapshot{
		CurrentStep:  FirstStep(),
		LastSeenDate: validators.StartOfDay(f.now()),
	}
}

func (f *Flow) update(fn func(*Snapshot)) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.snap)
	return f.snap.clone()
}

// Snapshot returns the current data
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.clone()
}

// Reset returns the flow to its initial empty state
func (f *Flow) Reset() Snapshot {
	return f.update(func(s *Snapshot) { *s = f.initial() })
}

// UpdateCurrentStep records the visible step
func (f *Flow) UpdateCurrentStep(step Step) Snapshot {
	return f.update(func(s *Snapshot) { s.CurrentStep = step })
}

// UpdateMicrochip keeps digits only, at most 15
func (f *Flow) UpdateMicrochip(number string) Snapshot {
	return f.update(func(s *Snapshot) { s.MicrochipNumber = normalizeMicrochip(number) })
}

// UpdatePhoto records a confirmed photo
func (f *Flow) UpdatePhoto(photo PhotoAttachment) Snapshot {
	return f.update(func(s *Snapshot) { s.Photo = &photo })
}

// ClearPhoto removes the photo
func (f *Flow) ClearPhoto() Snapshot {
	return f.update(func(s *Snapshot) { s.Photo = nil })
}

// UpdateLastSeenDate stores the calendar day of d, clamped to today
func (f *Flow) UpdateLastSeenDate(d time.Time) Snapshot {
	return f.update(func(s *Snapshot) { s.LastSeenDate = clampDate(d, f.now()) })
}

// UpdatePetName sets the optional pet name
func (f *Flow) UpdatePetName(name string) Snapshot {
	return f.update(func(s *Snapshot) { s.PetName = name })
}

// UpdateSpecies sets the species. Changing to a different species clears the breed.
func (f *Flow) UpdateSpecies(species string) Snapshot {
	return f.update(func(s *Snapshot) { setSpecies(s, species) })
}

func setSpecies(s *Snapshot, species string) {
	if s.Species != species {
		s.Breed = ""
	}
	s.Species = species
}

// UpdateBreed sets the breed
func (f *Flow) UpdateBreed(breed string) Snapshot {
	return f.update(func(s *Snapshot) { s.Breed = breed })
}

// UpdateSex sets the sex
func (f *Flow) UpdateSex(sex string) Snapshot {
	return f.update(func(s *Snapshot) { s.Sex = sex })
}

// UpdateAge sets or clears the age
func (f *Flow) UpdateAge(age *int) Snapshot {
	return f.update(func(s *Snapshot) {
		s.Age = clonePtr(age)
		s.Input.Age = ""
		if age != nil {
			s.Input.Age = strconv.Itoa(*age)
		}
	})
}

// UpdateDescription stores the text clipped to 500 characters
func (f *Flow) UpdateDescription(text string) Snapshot {
	return f.update(func(s *Snapshot) { s.Description = validators.Truncate(text, MaxDescriptionLength) })
}

// UpdateLocation sets both coordinates. A pair with one side missing clears both.
func (f *Flow) UpdateLocation(lat, lng *float64) Snapshot {
	return f.update(func(s *Snapshot) { setLocation(s, lat, lng) })
}

func setLocation(s *Snapshot, lat, lng *float64) {
	if lat == nil || lng == nil {
		s.Latitude, s.Longitude = nil, nil
		s.Input.Latitude, s.Input.Longitude = "", ""
		return
	}
	s.Latitude, s.Longitude = clonePtr(lat), clonePtr(lng)
	s.Input.Latitude, s.Input.Longitude = formatCoordinate(*lat), formatCoordinate(*lng)
}

// UpdateAnimalDescription merges the Description step in one step. The
// species rule is applied before the breed is set.
func (f *Flow) UpdateAnimalDescription(d AnimalDescription) Snapshot {
	return f.update(func(s *Snapshot) {
		s.LastSeenDate = clampDate(d.LastSeenDate, f.now())
		s.PetName = d.PetName
		setSpecies(s, d.Species)
		s.Breed = d.Breed
		s.Sex = d.Sex
		s.Age = clonePtr(d.Age)
		setLocation(s, d.Latitude, d.Longitude)
		s.Description = validators.Truncate(d.Description, MaxDescriptionLength)
		s.Input = d.Input
	})
}

// UpdateContactDetails merges the Contact step
func (f *Flow) UpdateContactDetails(phone, email, reward string) Snapshot {
	return f.update(func(s *Snapshot) {
		s.Phone = phone
		s.Email = email
		s.Reward = validators.Truncate(reward, MaxRewardLength)
	})
}

// UpdateReward stores the reward text clipped to 120 characters
func (f *Flow) UpdateReward(reward string) Snapshot {
	return f.update(func(s *Snapshot) { s.Reward = validators.Truncate(reward, MaxRewardLength) })
}

// UpdateAnnouncementResult records the server-issued id and management password
func (f *Flow) UpdateAnnouncementResult(id, managementPassword string) Snapshot {
	return f.update(func(s *Snapshot) {
		s.AnnouncementID = id
		s.ManagementPassword = managementPassword
	})
}

func normalizeMicrochip(s string) string {
	digits := validators.DigitsOnly(s)
	if len(digits) > MaxMicrochipDigits {
		digits = digits[:MaxMicrochipDigits]
	}
	return digits
}

func clampDate(d, now time.Time) time.Time {
	today := validators.StartOfDay(now)
	if d.IsZero() {
		return today
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	if day.After(today) {
		return today
	}
	return day
}
