package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Starship is a normalized starship record.
type Starship struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	Model                string     `json:"model"`
	StarshipClass        string     `json:"starship_class"`
	Manufacturer         string     `json:"manufacturer"`
	CostInCredits        *int64     `json:"cost_in_credits"`
	Length               *float64   `json:"length"`
	Crew                 string     `json:"crew"`
	Passengers           string     `json:"passengers"`
	MaxAtmospheringSpeed string     `json:"max_atmosphering_speed"`
	HyperdriveRating     *float64   `json:"hyperdrive_rating"`
	MGLT                 *int       `json:"mglt"`
	CargoCapacity        *int64     `json:"cargo_capacity"`
	Consumables          string     `json:"consumables"`
	PilotIDs             []int      `json:"pilot_ids"`
	FilmIDs              []int      `json:"film_ids"`
	Created              *time.Time `json:"created,omitempty"`
	Edited               *time.Time `json:"edited,omitempty"`
}

// StarshipSummary is the list view of a Starship.
type StarshipSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Model         string `json:"model"`
	StarshipClass string `json:"starship_class"`
	Manufacturer  string `json:"manufacturer"`
}

type rawStarship struct {
	Name                 text     `json:"name"`
	Model                text     `json:"model"`
	StarshipClass        text     `json:"starship_class"`
	Manufacturer         text     `json:"manufacturer"`
	CostInCredits        text     `json:"cost_in_credits"`
	Length               text     `json:"length"`
	Crew                 text     `json:"crew"`
	Passengers           text     `json:"passengers"`
	MaxAtmospheringSpeed text     `json:"max_atmosphering_speed"`
	HyperdriveRating     text     `json:"hyperdrive_rating"`
	MGLT                 text     `json:"MGLT"`
	CargoCapacity        text     `json:"cargo_capacity"`
	Consumables          text     `json:"consumables"`
	Pilots               []string `json:"pilots"`
	Films                []string `json:"films"`
	Created              string   `json:"created"`
	Edited               string   `json:"edited"`
}

// DecodeStarship normalizes an upstream starships object.
func DecodeStarship(item swapi.Item) (Starship, error) {
	var raw rawStarship
	if err := decode(item, &raw, func() string { return string(raw.Name) }); err != nil {
		return Starship{}, err
	}
	return Starship{
		ID:                   item.ID,
		Name:                 raw.Name.or(""),
		Model:                raw.Model.or("unknown"),
		StarshipClass:        raw.StarshipClass.or("unknown"),
		Manufacturer:         raw.Manufacturer.or("unknown"),
		CostInCredits:        parseInt64(raw.CostInCredits),
		Length:               parseFloat(raw.Length),
		Crew:                 raw.Crew.or("unknown"),
		Passengers:           raw.Passengers.or("unknown"),
		MaxAtmospheringSpeed: raw.MaxAtmospheringSpeed.or("unknown"),
		HyperdriveRating:     parseFloat(raw.HyperdriveRating),
		MGLT:                 parseFirstInt(raw.MGLT),
		CargoCapacity:        parseInt64(raw.CargoCapacity),
		Consumables:          raw.Consumables.or("unknown"),
		PilotIDs:             swapi.IDsFromURLs(raw.Pilots),
		FilmIDs:              swapi.IDsFromURLs(raw.Films),
		Created:              parseTimestamp(raw.Created),
		Edited:               parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (s Starship) Summary() StarshipSummary {
	return StarshipSummary{
		ID:            s.ID,
		Name:          s.Name,
		Model:         s.Model,
		StarshipClass: s.StarshipClass,
		Manufacturer:  s.Manufacturer,
	}
}
