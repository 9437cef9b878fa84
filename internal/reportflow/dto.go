package reportflow

import (
	"github.com/petspot/petspot-backend/pkg/validators"
)

// StatusMissing is the status of every report created by this flow
const StatusMissing = "MISSING"

// CreateAnnouncementRequest is the payload sent to create an announcement.
// Empty optional values are left out of the JSON entirely.
type CreateAnnouncementRequest struct {
	Species           string   `json:"species"`
	Sex               string   `json:"sex"`
	LastSeenDate      string   `json:"lastSeenDate"`
	Status            string   `json:"status"`
	LocationLatitude  *float64 `json:"locationLatitude,omitempty"`
	LocationLongitude *float64 `json:"locationLongitude,omitempty"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	MicrochipNumber   string   `json:"microchipNumber,omitempty"`
	Age               *int     `json:"age,omitempty"`
	PetName           string   `json:"petName,omitempty"`
	Breed             string   `json:"breed,omitempty"`
	Description       string   `json:"description,omitempty"`
	Reward            string   `json:"reward,omitempty"`
}

// NewCreateAnnouncementRequest maps a snapshot to the create payload
func NewCreateAnnouncementRequest(s Snapshot) *CreateAnnouncementRequest {
	req := &CreateAnnouncementRequest{
		Species:         s.Species,
		Sex:             s.Sex,
		LastSeenDate:    s.LastSeenDate.Format(validators.DateLayout),
		Status:          StatusMissing,
		Email:           s.Email,
		Phone:           s.Phone,
		MicrochipNumber: s.MicrochipNumber,
		Age:             clonePtr(s.Age),
		PetName:         s.PetName,
		Breed:           s.Breed,
		Description:     s.Description,
		Reward:          s.Reward,
	}
	if s.Latitude != nil && s.Longitude != nil {
		req.LocationLatitude = clonePtr(s.Latitude)
		req.LocationLongitude = clonePtr(s.Longitude)
	}
	return req
}
