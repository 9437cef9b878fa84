package domain

import (
	"time"
)

// Status of an announcement
type Status string

const (
	StatusMissing Status = "MISSING"
	StatusFound   Status = "FOUND"
)

// Species values accepted by the API
const (
	SpeciesDog     = "DOG"
	SpeciesCat     = "CAT"
	SpeciesBird    = "BIRD"
	SpeciesRabbit  = "RABBIT"
	SpeciesRodent  = "RODENT"
	SpeciesReptile = "REPTILE"
	SpeciesOther   = "OTHER"
)

// Sex values accepted by the API
const (
	SexMale    = "MALE"
	SexFemale  = "FEMALE"
	SexUnknown = "UNKNOWN"
)

// MaxAge is the upper bound for a pet's age in years
const MaxAge = 40

// AllSpecies lists the species in display order
func AllSpecies() []string {
	return []string{SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesRodent, SpeciesReptile, SpeciesOther}
}

// AllSexes lists the sex values in display order
func AllSexes() []string {
	return []string{SexMale, SexFemale, SexUnknown}
}

// Announcement is a lost or found pet report
type Announcement struct {
	ID                     string    `json:"id" db:"id"`
	PetName                *string   `json:"petName,omitempty" db:"pet_name"`
	Species                string    `json:"species" db:"species"`
	Breed                  *string   `json:"breed,omitempty" db:"breed"`
	Sex                    string    `json:"sex" db:"sex"`
	Age                    *int      `json:"age,omitempty" db:"age"`
	Description            *string   `json:"description,omitempty" db:"description"`
	MicrochipNumber        *string   `json:"microchipNumber,omitempty" db:"microchip_number"`
	LocationLatitude       float64   `json:"locationLatitude" db:"location_latitude"`
	LocationLongitude      float64   `json:"locationLongitude" db:"location_longitude"`
	Email                  *string   `json:"email,omitempty" db:"email"`
	Phone                  *string   `json:"phone,omitempty" db:"phone"`
	PhotoURL               *string   `json:"photoUrl,omitempty" db:"photo_url"`
	LastSeenDate           string    `json:"lastSeenDate" db:"last_seen_date"`
	Status                 Status    `json:"status" db:"status"`
	Reward                 *string   `json:"reward,omitempty" db:"reward"`
	ManagementPasswordHash string    `json:"-" db:"management_password_hash"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}

// HasMicrochip reports whether a microchip number is recorded
func (a *Announcement) HasMicrochip() bool {
	return a.MicrochipNumber != nil && *a.MicrochipNumber != ""
}

// CreateResult is returned once, right after creation. It is the only place the
// plaintext management password ever appears.
type CreateResult struct {
	*Announcement
	ManagementPassword string `json:"managementPassword"`
}

// LocationFilter restricts a listing to announcements within RangeKm of a point
type LocationFilter struct {
	Latitude  float64
	Longitude float64
	RangeKm   float64
}

// ListFilter holds listing options
type ListFilter struct {
	Status   *Status
	Location *LocationFilter
	Limit    int
	Offset   int
}

// PhotoUpload describes an uploaded photo file
type PhotoUpload struct {
	Filename string
	Size     int64
	Content  []byte
}

// CreateAnnouncementRequest is the body of POST /announcements. Field order is
// the order in which validation reports the first failure.
type CreateAnnouncementRequest struct {
	Species           string   `json:"species" validate:"required,oneof=DOG CAT BIRD RABBIT RODENT REPTILE OTHER"`
	Sex               string   `json:"sex" validate:"required,oneof=MALE FEMALE UNKNOWN"`
	LastSeenDate      string   `json:"lastSeenDate" validate:"required,lastseendate"`
	Status            Status   `json:"status" validate:"required,oneof=MISSING FOUND"`
	LocationLatitude  *float64 `json:"locationLatitude" validate:"required,latitude"`
	LocationLongitude *float64 `json:"locationLongitude" validate:"required,longitude"`
	Email             string   `json:"email,omitempty" validate:"required_without=Phone,omitempty,email,max=254"`
	Phone             string   `json:"phone,omitempty" validate:"required_without=Email,omitempty,phone,max=32"`
	MicrochipNumber   string   `json:"microchipNumber,omitempty" validate:"omitempty,digits,max=15"`
	Age               *int     `json:"age,omitempty" validate:"omitempty,min=0,max=40"`
	PetName           string   `json:"petName,omitempty" validate:"omitempty,max=100"`
	Breed             string   `json:"breed,omitempty" validate:"omitempty,max=100"`
	Description       string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Reward            string   `json:"reward,omitempty" validate:"omitempty,max=120"`
}
