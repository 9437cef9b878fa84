package reportflow

import "time"

// Intent is a user action dispatched to the Controller
type Intent interface {
	intent()
}

// Common step intents
type (
	ContinueClicked struct{}
	BackClicked     struct{}
)

// Microchip step
type MicrochipChanged struct{ Value string }

// Photo step
type (
	// PhotoSelected carries an opaque handle to the picked file, such as a path or URI
	PhotoSelected struct{ Handle string }
	RemovePhoto   struct{}
)

// Description step
type (
	LastSeenDateChanged struct{ Date time.Time }
	OpenDatePicker      struct{}
	PetNameChanged      struct{ Value string }
	SpeciesSelected     struct{ Value string }
	BreedChanged        struct{ Value string }
	SexSelected         struct{ Value string }
	AgeChanged          struct{ Value string }
	DescriptionChanged  struct{ Value string }
	LatitudeChanged     struct{ Value string }
	LongitudeChanged    struct{ Value string }
	RequestGPS          struct{}
)

// Contact step
type (
	PhoneChanged  struct{ Value string }
	EmailChanged  struct{ Value string }
	RewardChanged struct{ Value string }
	RetryClicked  struct{}
)

// Summary step
type (
	CopyPasswordClicked struct{}
	CloseClicked        struct{}
)

// Flow-level intents handled by the Controller itself
type (
	NavigateNext      struct{}
	NavigateBack      struct{}
	Submit            struct{}
	UpdateCurrentStep struct{ Step Step }
)

func (ContinueClicked) intent()     {}
func (BackClicked) intent()         {}
func (MicrochipChanged) intent()    {}
func (PhotoSelected) intent()       {}
func (RemovePhoto) intent()         {}
func (LastSeenDateChanged) intent() {}
func (OpenDatePicker) intent()      {}
func (PetNameChanged) intent()      {}
func (SpeciesSelected) intent()     {}
func (BreedChanged) intent()        {}
func (SexSelected) intent()         {}
func (AgeChanged) intent()          {}
func (DescriptionChanged) intent()  {}
func (LatitudeChanged) intent()     {}
func (LongitudeChanged) intent()    {}
func (RequestGPS) intent()          {}
func (PhoneChanged) intent()        {}
func (EmailChanged) intent()        {}
func (RewardChanged) intent()       {}
func (RetryClicked) intent()        {}
func (CopyPasswordClicked) intent() {}
func (CloseClicked) intent()        {}
func (NavigateNext) intent()        {}
func (NavigateBack) intent()        {}
func (Submit) intent()              {}
func (UpdateCurrentStep) intent()   {}
