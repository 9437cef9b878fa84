package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/petspot/petspot-backend/pkg/validators"
	"gopkg.in/yaml.v3"
)

// Answers is a scripted run of the report flow. Photo is a file path and
// is required: the Photo step does not continue without one.
type Answers struct {
	Microchip    string    `yaml:"microchip"`
	Photo        string    `yaml:"photo"`
	LastSeenDate string    `yaml:"lastSeenDate"`
	PetName      string    `yaml:"petName"`
	Species      string    `yaml:"species"`
	Breed        string    `yaml:"breed"`
	Sex          string    `yaml:"sex"`
	Age          string    `yaml:"age"`
	Description  string    `yaml:"description"`
	Location     *Location `yaml:"location"`
	Phone        string    `yaml:"phone"`
	Email        string    `yaml:"email"`
	Reward       string    `yaml:"reward"`
}

// Location is where the pet was last seen. With UseDevice the position is
// requested from the geolocation capability instead of typed in.
type Location struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	UseDevice bool    `yaml:"useDevice"`
}

func loadAnswers(path string) (*Answers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var a Answers
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return &a, nil
}

func (a *Answers) microchipIntents() []reportflow.Intent {
	return []reportflow.Intent{reportflow.MicrochipChanged{Value: a.Microchip}}
}

func (a *Answers) descriptionIntents() ([]reportflow.Intent, error) {
	var intents []reportflow.Intent
	if a.LastSeenDate != "" {
		d, err := validators.ParseDate(a.LastSeenDate)
		if err != nil {
			return nil, fmt.Errorf("lastSeenDate %q: expected YYYY-MM-DD", a.LastSeenDate)
		}
		intents = append(intents, reportflow.LastSeenDateChanged{Date: d})
	}

	intents = append(intents,
		reportflow.PetNameChanged{Value: a.PetName},
		reportflow.SpeciesSelected{Value: a.Species},
		reportflow.BreedChanged{Value: a.Breed},
		reportflow.SexSelected{Value: a.Sex},
		reportflow.AgeChanged{Value: a.Age},
		reportflow.DescriptionChanged{Value: a.Description},
	)

	switch {
	case a.Location == nil:
	case a.Location.UseDevice:
		intents = append(intents, reportflow.RequestGPS{})
	default:
		intents = append(intents,
			reportflow.LatitudeChanged{Value: formatFloat(a.Location.Latitude)},
			reportflow.LongitudeChanged{Value: formatFloat(a.Location.Longitude)},
		)
	}
	return intents, nil
}

func (a *Answers) contactIntents() []reportflow.Intent {
	return []reportflow.Intent{
		reportflow.PhoneChanged{Value: a.Phone},
		reportflow.EmailChanged{Value: a.Email},
		reportflow.RewardChanged{Value: a.Reward},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
