package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Person is a normalized character record.
type Person struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Height        *int       `json:"height"`
	Mass          *float64   `json:"mass"`
	HairColor     string     `json:"hair_color"`
	SkinColor     string     `json:"skin_color"`
	EyeColor      string     `json:"eye_color"`
	BirthYear     string     `json:"birth_year"`
	Gender        string     `json:"gender"`
	HomeworldID   *int       `json:"homeworld_id"`
	HomeworldName string     `json:"homeworld_name,omitempty"`
	FilmIDs       []int      `json:"film_ids"`
	SpeciesIDs    []int      `json:"species_ids"`
	VehicleIDs    []int      `json:"vehicle_ids"`
	StarshipIDs   []int      `json:"starship_ids"`
	Created       *time.Time `json:"created,omitempty"`
	Edited        *time.Time `json:"edited,omitempty"`
}

// PersonSummary is the list view of a Person.
type PersonSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	BirthYear   string `json:"birth_year"`
	HomeworldID *int   `json:"homeworld_id"`
	FilmsCount  int    `json:"films_count"`
}

type rawPerson struct {
	Name      text     `json:"name"`
	Height    text     `json:"height"`
	Mass      text     `json:"mass"`
	HairColor text     `json:"hair_color"`
	SkinColor text     `json:"skin_color"`
	EyeColor  text     `json:"eye_color"`
	BirthYear text     `json:"birth_year"`
	Gender    text     `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Vehicles  []string `json:"vehicles"`
	Starships []string `json:"starships"`
	Created   string   `json:"created"`
	Edited    string   `json:"edited"`
}

// DecodePerson normalizes an upstream people object.
func DecodePerson(item swapi.Item) (Person, error) {
	var raw rawPerson
	if err := decode(item, &raw, func() string { return string(raw.Name) }); err != nil {
		return Person{}, err
	}
	return Person{
		ID:          item.ID,
		Name:        raw.Name.or(""),
		Height:      parseInt(raw.Height),
		Mass:        parseFloat(raw.Mass),
		HairColor:   raw.HairColor.or("unknown"),
		SkinColor:   raw.SkinColor.or("unknown"),
		EyeColor:    raw.EyeColor.or("unknown"),
		BirthYear:   raw.BirthYear.or("unknown"),
		Gender:      raw.Gender.or("unknown"),
		HomeworldID: idFrom(raw.Homeworld),
		FilmIDs:     swapi.IDsFromURLs(raw.Films),
		SpeciesIDs:  swapi.IDsFromURLs(raw.Species),
		VehicleIDs:  swapi.IDsFromURLs(raw.Vehicles),
		StarshipIDs: swapi.IDsFromURLs(raw.Starships),
		Created:     parseTimestamp(raw.Created),
		Edited:      parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (p Person) Summary() PersonSummary {
	return PersonSummary{
		ID:          p.ID,
		Name:        p.Name,
		Gender:      p.Gender,
		BirthYear:   p.BirthYear,
		HomeworldID: p.HomeworldID,
		FilmsCount:  len(p.FilmIDs),
	}
}
