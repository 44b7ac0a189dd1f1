package catalog

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/viniciuslks7/API-Starwars/models"
)

// Overview summarizes the whole universe.
type Overview struct {
	TotalCharacters     int     `json:"total_characters"`
	TotalPlanets        int     `json:"total_planets"`
	TotalStarships      int     `json:"total_starships"`
	TotalVehicles       int     `json:"total_vehicles"`
	TotalSpecies        int     `json:"total_species"`
	TotalFilms          int     `json:"total_films"`
	MostPopulatedPlanet *string `json:"most_populated_planet"`
	LargestStarship     *string `json:"largest_starship"`
	TallestCharacter    *string `json:"tallest_character"`
}

// FilmStatistics summarizes the films.
type FilmStatistics struct {
	TotalFilms                 int     `json:"total_films"`
	TotalCharactersAcrossFilms int     `json:"total_characters_across_films"`
	AverageCharactersPerFilm   float64 `json:"average_characters_per_film"`
	FilmWithMostCharacters     *string `json:"film_with_most_characters"`
	FilmWithMostPlanets        *string `json:"film_with_most_planets"`
	EarliestFilm               *string `json:"earliest_film"`
	LatestFilm                 *string `json:"latest_film"`
}

// CharacterStatistics summarizes the characters.
type CharacterStatistics struct {
	TotalCharacters      int            `json:"total_characters"`
	GenderDistribution   map[string]int `json:"gender_distribution"`
	EyeColorDistribution map[string]int `json:"eye_color_distribution"`
	AverageHeight        *float64       `json:"average_height"`
	AverageMass          *float64       `json:"average_mass"`
	TallestCharacter     *string        `json:"tallest_character"`
	HeaviestCharacter    *string        `json:"heaviest_character"`
}

// PlanetStatistics summarizes the planets. Climate and terrain values are
// split on commas before counting.
type PlanetStatistics struct {
	TotalPlanets        int            `json:"total_planets"`
	ClimateDistribution map[string]int `json:"climate_distribution"`
	TerrainDistribution map[string]int `json:"terrain_distribution"`
	TotalPopulation     int64          `json:"total_population"`
	AveragePopulation   *float64       `json:"average_population"`
	MostPopulatedPlanet *string        `json:"most_populated_planet"`
	LargestPlanet       *string        `json:"largest_planet"`
}

// Overview loads every resource concurrently and summarizes them. Any
// failed collection fails the overview.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		people    []models.Person
		films     []models.Film
		starships []models.Starship
		planets   []models.Planet
		vehicles  []models.Vehicle
		species   []models.Species
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { people, err = s.People(gctx); return })
	g.Go(func() (err error) { films, err = s.Films(gctx); return })
	g.Go(func() (err error) { starships, err = s.Starships(gctx); return })
	g.Go(func() (err error) { planets, err = s.Planets(gctx); return })
	g.Go(func() (err error) { vehicles, err = s.Vehicles(gctx); return })
	g.Go(func() (err error) { species, err = s.SpeciesList(gctx); return })
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	return Overview{
		TotalCharacters:     len(people),
		TotalPlanets:        len(planets),
		TotalStarships:      len(starships),
		TotalVehicles:       len(vehicles),
		TotalSpecies:        len(species),
		TotalFilms:          len(films),
		MostPopulatedPlanet: maxName(planets, func(p models.Planet) (string, *float64) { return p.Name, asFloat(p.Population) }),
		LargestStarship:     maxName(starships, func(v models.Starship) (string, *float64) { return v.Name, v.Length }),
		TallestCharacter:    maxName(people, func(p models.Person) (string, *float64) { return p.Name, asFloat(p.Height) }),
	}, nil
}

// FilmStatistics summarizes the films.
func (s *Service) FilmStatistics(ctx context.Context) (FilmStatistics, error) {
	films, err := s.Films(ctx)
	if err != nil {
		return FilmStatistics{}, err
	}

	st := FilmStatistics{TotalFilms: len(films)}
	for _, f := range films {
		st.TotalCharactersAcrossFilms += len(f.CharacterIDs)
	}
	if len(films) > 0 {
		st.AverageCharactersPerFilm = round(float64(st.TotalCharactersAcrossFilms)/float64(len(films)), 1)
	}
	st.FilmWithMostCharacters = maxName(films, func(f models.Film) (string, *float64) {
		n := float64(len(f.CharacterIDs))
		return f.Title, &n
	})
	st.FilmWithMostPlanets = maxName(films, func(f models.Film) (string, *float64) {
		n := float64(len(f.PlanetIDs))
		return f.Title, &n
	})

	var earliest, latest *models.Film
	for i := range films {
		f := &films[i]
		if f.ReleaseDate == nil {
			continue
		}
		if earliest == nil || f.ReleaseDate.Before(earliest.ReleaseDate.Time) {
			earliest = f
		}
		if latest == nil || f.ReleaseDate.After(latest.ReleaseDate.Time) {
			latest = f
		}
	}
	if earliest != nil {
		st.EarliestFilm = &earliest.Title
		st.LatestFilm = &latest.Title
	}
	return st, nil
}

// CharacterStatistics summarizes the characters.
func (s *Service) CharacterStatistics(ctx context.Context) (CharacterStatistics, error) {
	people, err := s.People(ctx)
	if err != nil {
		return CharacterStatistics{}, err
	}

	st := CharacterStatistics{
		TotalCharacters:      len(people),
		GenderDistribution:   make(map[string]int),
		EyeColorDistribution: make(map[string]int),
	}
	var heights, masses []float64
	for _, p := range people {
		st.GenderDistribution[p.Gender]++
		st.EyeColorDistribution[p.EyeColor]++
		if p.Height != nil {
			heights = append(heights, float64(*p.Height))
		}
		if p.Mass != nil {
			masses = append(masses, *p.Mass)
		}
	}
	st.AverageHeight = average(heights, 1)
	st.AverageMass = average(masses, 1)
	st.TallestCharacter = maxName(people, func(p models.Person) (string, *float64) { return p.Name, asFloat(p.Height) })
	st.HeaviestCharacter = maxName(people, func(p models.Person) (string, *float64) { return p.Name, p.Mass })
	return st, nil
}

// PlanetStatistics summarizes the planets.
func (s *Service) PlanetStatistics(ctx context.Context) (PlanetStatistics, error) {
	planets, err := s.Planets(ctx)
	if err != nil {
		return PlanetStatistics{}, err
	}

	st := PlanetStatistics{
		TotalPlanets:        len(planets),
		ClimateDistribution: make(map[string]int),
		TerrainDistribution: make(map[string]int),
	}
	var populations []float64
	for _, p := range planets {
		countParts(st.ClimateDistribution, p.Climate)
		countParts(st.TerrainDistribution, p.Terrain)
		if p.Population != nil {
			st.TotalPopulation += *p.Population
			populations = append(populations, float64(*p.Population))
		}
	}
	st.AveragePopulation = average(populations, 0)
	st.MostPopulatedPlanet = maxName(planets, func(p models.Planet) (string, *float64) { return p.Name, asFloat(p.Population) })
	st.LargestPlanet = maxName(planets, func(p models.Planet) (string, *float64) { return p.Name, asFloat(p.Diameter) })
	return st, nil
}

// maxName returns the name of the first item with the largest positive
// value, or nil when no item has one.
func maxName[T any](items []T, value func(T) (string, *float64)) *string {
	var (
		best    string
		bestVal float64
		found   bool
	)
	for _, it := range items {
		name, v := value(it)
		if v == nil || *v <= 0 {
			continue
		}
		if !found || *v > bestVal {
			best, bestVal, found = name, *v, true
		}
	}
	if !found {
		return nil
	}
	return &best
}

func average(values []float64, places int) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := round(sum/float64(len(values)), places)
	return &avg
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func countParts(dist map[string]int, value string) {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			dist[part]++
		}
	}
}
