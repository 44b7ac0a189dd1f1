package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Planet is a normalized planet record.
type Planet struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Diameter       *int       `json:"diameter"`
	RotationPeriod *int       `json:"rotation_period"`
	OrbitalPeriod  *int       `json:"orbital_period"`
	Gravity        string     `json:"gravity"`
	Population     *int64     `json:"population"`
	Climate        string     `json:"climate"`
	Terrain        string     `json:"terrain"`
	SurfaceWater   *int       `json:"surface_water"`
	ResidentIDs    []int      `json:"resident_ids"`
	FilmIDs        []int      `json:"film_ids"`
	Created        *time.Time `json:"created,omitempty"`
	Edited         *time.Time `json:"edited,omitempty"`
}

// PlanetSummary is the list view of a Planet.
type PlanetSummary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population *int64 `json:"population"`
}

type rawPlanet struct {
	Name           text     `json:"name"`
	Diameter       text     `json:"diameter"`
	RotationPeriod text     `json:"rotation_period"`
	OrbitalPeriod  text     `json:"orbital_period"`
	Gravity        text     `json:"gravity"`
	Population     text     `json:"population"`
	Climate        text     `json:"climate"`
	Terrain        text     `json:"terrain"`
	SurfaceWater   text     `json:"surface_water"`
	Residents      []string `json:"residents"`
	Films          []string `json:"films"`
	Created        string   `json:"created"`
	Edited         string   `json:"edited"`
}

// DecodePlanet normalizes an upstream planets object.
func DecodePlanet(item swapi.Item) (Planet, error) {
	var raw rawPlanet
	if err := decode(item, &raw, func() string { return string(raw.Name) }); err != nil {
		return Planet{}, err
	}
	return Planet{
		ID:             item.ID,
		Name:           raw.Name.or(""),
		Diameter:       parseInt(raw.Diameter),
		RotationPeriod: parseInt(raw.RotationPeriod),
		OrbitalPeriod:  parseInt(raw.OrbitalPeriod),
		Gravity:        raw.Gravity.or("unknown"),
		Population:     parseInt64(raw.Population),
		Climate:        raw.Climate.or("unknown"),
		Terrain:        raw.Terrain.or("unknown"),
		SurfaceWater:   parseInt(raw.SurfaceWater),
		ResidentIDs:    swapi.IDsFromURLs(raw.Residents),
		FilmIDs:        swapi.IDsFromURLs(raw.Films),
		Created:        parseTimestamp(raw.Created),
		Edited:         parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (p Planet) Summary() PlanetSummary {
	return PlanetSummary{
		ID:         p.ID,
		Name:       p.Name,
		Climate:    p.Climate,
		Terrain:    p.Terrain,
		Population: p.Population,
	}
}
