package models

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Film is a normalized film record.
type Film struct {
	ID           int        `json:"id"`
	EpisodeID    int        `json:"episode_id"`
	Title        string     `json:"title"`
	OpeningCrawl string     `json:"opening_crawl"`
	Director     string     `json:"director"`
	Producer     string     `json:"producer"`
	ReleaseDate  *Date      `json:"release_date"`
	CharacterIDs []int      `json:"character_ids"`
	PlanetIDs    []int      `json:"planet_ids"`
	StarshipIDs  []int      `json:"starship_ids"`
	VehicleIDs   []int      `json:"vehicle_ids"`
	SpeciesIDs   []int      `json:"species_ids"`
	Created      *time.Time `json:"created,omitempty"`
	Edited       *time.Time `json:"edited,omitempty"`
}

// FilmSummary is the list view of a Film.
type FilmSummary struct {
	ID          int    `json:"id"`
	EpisodeID   int    `json:"episode_id"`
	Title       string `json:"title"`
	Director    string `json:"director"`
	ReleaseDate *Date  `json:"release_date"`
}

type rawFilm struct {
	Title        text     `json:"title"`
	EpisodeID    text     `json:"episode_id"`
	OpeningCrawl text     `json:"opening_crawl"`
	Director     text     `json:"director"`
	Producer     text     `json:"producer"`
	ReleaseDate  string   `json:"release_date"`
	Characters   []string `json:"characters"`
	Planets      []string `json:"planets"`
	Starships    []string `json:"starships"`
	Vehicles     []string `json:"vehicles"`
	Species      []string `json:"species"`
	Created      string   `json:"created"`
	Edited       string   `json:"edited"`
}

// DecodeFilm normalizes an upstream films object.
func DecodeFilm(item swapi.Item) (Film, error) {
	var raw rawFilm
	if err := decode(item, &raw, func() string { return string(raw.Title) }); err != nil {
		return Film{}, err
	}
	var episode int
	if n := parseInt(raw.EpisodeID); n != nil {
		episode = *n
	}
	return Film{
		ID:           item.ID,
		EpisodeID:    episode,
		Title:        raw.Title.or(""),
		OpeningCrawl: raw.OpeningCrawl.or(""),
		Director:     raw.Director.or("unknown"),
		Producer:     raw.Producer.or("unknown"),
		ReleaseDate:  ParseDate(raw.ReleaseDate),
		CharacterIDs: swapi.IDsFromURLs(raw.Characters),
		PlanetIDs:    swapi.IDsFromURLs(raw.Planets),
		StarshipIDs:  swapi.IDsFromURLs(raw.Starships),
		VehicleIDs:   swapi.IDsFromURLs(raw.Vehicles),
		SpeciesIDs:   swapi.IDsFromURLs(raw.Species),
		Created:      parseTimestamp(raw.Created),
		Edited:       parseTimestamp(raw.Edited),
	}, nil
}

// Summary returns the list view.
func (f Film) Summary() FilmSummary {
	return FilmSummary{
		ID:          f.ID,
		EpisodeID:   f.EpisodeID,
		Title:       f.Title,
		Director:    f.Director,
		ReleaseDate: f.ReleaseDate,
	}
}

// Era returns the trilogy era of the film's episode.
func (f Film) Era() string { return Era(f.EpisodeID) }
