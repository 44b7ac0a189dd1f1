package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Species is a normalized species record.
type Species struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Classification  string     `json:"classification"`
	Designation     string     `json:"designation"`
	AverageHeight   *int       `json:"average_height"`
	AverageLifespan *int       `json:"average_lifespan"`
	EyeColors       string     `json:"eye_colors"`
	HairColors      string     `json:"hair_colors"`
	SkinColors      string     `json:"skin_colors"`
	Language        string     `json:"language"`
	HomeworldID     *int       `json:"homeworld_id"`
	PeopleIDs       []int      `json:"people_ids"`
	FilmIDs         []int      `json:"film_ids"`
	Created         *time.Time `json:"created,omitempty"`
	Edited          *time.Time `json:"edited,omitempty"`
}

// SpeciesSummary is the list view of a Species.
type SpeciesSummary struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Designation    string `json:"designation"`
	Language       string `json:"language"`
}

type rawSpecies struct {
	Name            text     `json:"name"`
	Classification  text     `json:"classification"`
	Designation     text     `json:"designation"`
	AverageHeight   text     `json:"average_height"`
	AverageLifespan text     `json:"average_lifespan"`
	EyeColors       text     `json:"eye_colors"`
	HairColors      text     `json:"hair_colors"`
	SkinColors      text     `json:"skin_colors"`
	Language        text     `json:"language"`
	Homeworld       string   `json:"homeworld"`
	People          []string `json:"people"`
	Films           []string `json:"films"`
	Created         string   `json:"created"`
	Edited          string   `json:"edited"`
}

// DecodeSpecies normalizes an upstream species object.
func DecodeSpecies(item swapi.Item) (Species, error) {
	var raw rawSpecies
	if err := decode(item, &raw, func() string { return string(raw.Name) }); err != nil {
		return Species{}, err
	}
	return Species{
		ID:              item.ID,
		Name:            raw.Name.or(""),
		Classification:  raw.Classification.or("unknown"),
		Designation:     raw.Designation.or("unknown"),
		AverageHeight:   parseInt(raw.AverageHeight),
		AverageLifespan: parseInt(raw.AverageLifespan),
		EyeColors:       raw.EyeColors.or("unknown"),
		HairColors:      raw.HairColors.or("unknown"),
		SkinColors:      raw.SkinColors.or("unknown"),
		Language:        raw.Language.or("unknown"),
		HomeworldID:     idFrom(raw.Homeworld),
		PeopleIDs:       swapi.IDsFromURLs(raw.People),
		FilmIDs:         swapi.IDsFromURLs(raw.Films),
		Created:         parseTimestamp(raw.Created),
		Edited:          parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (s Species) Summary() SpeciesSummary {
	return SpeciesSummary{
		ID:             s.ID,
		Name:           s.Name,
		Classification: s.Classification,
		Designation:    s.Designation,
		Language:       s.Language,
	}
}
