package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Vehicle is a normalized vehicle record.
type Vehicle struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	Model                string     `json:"model"`
	VehicleClass         string     `json:"vehicle_class"`
	Manufacturer         string     `json:"manufacturer"`
	CostInCredits        *int64     `json:"cost_in_credits"`
	Length               *float64   `json:"length"`
	Crew                 string     `json:"crew"`
	Passengers           string     `json:"passengers"`
	MaxAtmospheringSpeed *int       `json:"max_atmosphering_speed"`
	CargoCapacity        *int64     `json:"cargo_capacity"`
	Consumables          string     `json:"consumables"`
	PilotIDs             []int      `json:"pilot_ids"`
	FilmIDs              []int      `json:"film_ids"`
	Created              *time.Time `json:"created,omitempty"`
	Edited               *time.Time `json:"edited,omitempty"`
}

// VehicleSummary is the list view of a Vehicle.
type VehicleSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	VehicleClass string `json:"vehicle_class"`
	Manufacturer string `json:"manufacturer"`
}

type rawVehicle struct {
	Name                 text     `json:"name"`
	Model                text     `json:"model"`
	VehicleClass         text     `json:"vehicle_class"`
	Manufacturer         text     `json:"manufacturer"`
	CostInCredits        text     `json:"cost_in_credits"`
	Length               text     `json:"length"`
	Crew                 text     `json:"crew"`
	Passengers           text     `json:"passengers"`
	MaxAtmospheringSpeed text     `json:"max_atmosphering_speed"`
	CargoCapacity        text     `json:"cargo_capacity"`
	Consumables          text     `json:"consumables"`
	Pilots               []string `json:"pilots"`
	Films                []string `json:"films"`
	Created              string   `json:"created"`
	Edited               string   `json:"edited"`
}

// DecodeVehicle normalizes an upstream vehicles object.
func DecodeVehicle(item swapi.Item) (Vehicle, error) {
	var raw rawVehicle
	if err := decode(item, &raw, func() string { return string(raw.Name) }); err != nil {
		return Vehicle{}, err
	}
	return Vehicle{
		ID:                   item.ID,
		Name:                 raw.Name.or(""),
		Model:                raw.Model.or("unknown"),
		VehicleClass:         raw.VehicleClass.or("unknown"),
		Manufacturer:         raw.Manufacturer.or("unknown"),
		CostInCredits:        parseInt64(raw.CostInCredits),
		Length:               parseFloat(raw.Length),
		Crew:                 raw.Crew.or("unknown"),
		Passengers:           raw.Passengers.or("unknown"),
		MaxAtmospheringSpeed: parseSpeed(raw.MaxAtmospheringSpeed),
		CargoCapacity:        parseInt64(raw.CargoCapacity),
		Consumables:          raw.Consumables.or("unknown"),
		PilotIDs:             swapi.IDsFromURLs(raw.Pilots),
		FilmIDs:              swapi.IDsFromURLs(raw.Films),
		Created:              parseTimestamp(raw.Created),
		Edited:               parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (v Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:           v.ID,
		Name:         v.Name,
		Model:        v.Model,
		VehicleClass: v.VehicleClass,
		Manufacturer: v.Manufacturer,
	}
}
