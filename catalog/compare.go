package catalog

import (
	"context"
	"fmt"

	"github.com/viniciuslks7/API-Starwars/models"
)

// Comparison size limits.
const (
	MinCompare = 2
	MaxCompare = 5
)

// Comparison places several entities of one kind side by side.
type Comparison struct {
	EntityType       string   `json:"entity_type"`
	Entities         []any    `json:"entities"`
	ComparisonFields []string `json:"comparison_fields"`
}

type characterComparison struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Height         *int     `json:"height"`
	Mass           *float64 `json:"mass"`
	HairColor      string   `json:"hair_color"`
	EyeColor       string   `json:"eye_color"`
	BirthYear      string   `json:"birth_year"`
	Gender         string   `json:"gender"`
	FilmsCount     int      `json:"films_count"`
	StarshipsCount int      `json:"starships_count"`
}

type starshipComparison struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Model            string   `json:"model"`
	Manufacturer     string   `json:"manufacturer"`
	StarshipClass    string   `json:"starship_class"`
	CostInCredits    *int64   `json:"cost_in_credits"`
	Length           *float64 `json:"length"`
	Crew             string   `json:"crew"`
	Passengers       string   `json:"passengers"`
	HyperdriveRating *float64 `json:"hyperdrive_rating"`
	MGLT             *int     `json:"mglt"`
	CargoCapacity    *int64   `json:"cargo_capacity"`
}

type planetComparison struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Diameter       *int   `json:"diameter"`
	RotationPeriod *int   `json:"rotation_period"`
	OrbitalPeriod  *int   `json:"orbital_period"`
	Gravity        string `json:"gravity"`
	Population     *int64 `json:"population"`
	Climate        string `json:"climate"`
	Terrain        string `json:"terrain"`
	SurfaceWater   *int   `json:"surface_water"`
	ResidentsCount int    `json:"residents_count"`
	FilmsCount     int    `json:"films_count"`
}

func checkCompareIDs(ids []int) error {
	if len(ids) < MinCompare || len(ids) > MaxCompare {
		return fmt.Errorf("%w: got %d", ErrComparisonSize, len(ids))
	}
	return nil
}

func comparison[T, E any](entityType string, found []T, view func(T) E, fields ...string) (Comparison, error) {
	if len(found) < MinCompare {
		return Comparison{}, fmt.Errorf("%w: %s: found %d", ErrComparisonTooFew, entityType, len(found))
	}
	c := Comparison{EntityType: entityType, Entities: make([]any, len(found)), ComparisonFields: fields}
	for i, v := range found {
		c.Entities[i] = view(v)
	}
	return c, nil
}

// CompareCharacters compares 2 to 5 characters. Ids that cannot be loaded
// are skipped; fewer than two loaded is ErrComparisonTooFew.
func (s *Service) CompareCharacters(ctx context.Context, ids []int) (Comparison, error) {
	if err := checkCompareIDs(ids); err != nil {
		return Comparison{}, err
	}
	return comparison("characters", s.PeopleByIDs(ctx, ids), func(p models.Person) characterComparison {
		return characterComparison{
			ID:             p.ID,
			Name:           p.Name,
			Height:         p.Height,
			Mass:           p.Mass,
			HairColor:      p.HairColor,
			EyeColor:       p.EyeColor,
			BirthYear:      p.BirthYear,
			Gender:         p.Gender,
			FilmsCount:     len(p.FilmIDs),
			StarshipsCount: len(p.StarshipIDs),
		}
	}, "height", "mass", "films_count", "starships_count")
}

// CompareStarships compares 2 to 5 starships.
func (s *Service) CompareStarships(ctx context.Context, ids []int) (Comparison, error) {
	if err := checkCompareIDs(ids); err != nil {
		return Comparison{}, err
	}
	return comparison("starships", s.StarshipsByIDs(ctx, ids), func(v models.Starship) starshipComparison {
		return starshipComparison{
			ID:               v.ID,
			Name:             v.Name,
			Model:            v.Model,
			Manufacturer:     v.Manufacturer,
			StarshipClass:    v.StarshipClass,
			CostInCredits:    v.CostInCredits,
			Length:           v.Length,
			Crew:             v.Crew,
			Passengers:       v.Passengers,
			HyperdriveRating: v.HyperdriveRating,
			MGLT:             v.MGLT,
			CargoCapacity:    v.CargoCapacity,
		}
	}, "cost_in_credits", "length", "hyperdrive_rating", "mglt", "cargo_capacity")
}

// ComparePlanets compares 2 to 5 planets.
func (s *Service) ComparePlanets(ctx context.Context, ids []int) (Comparison, error) {
	if err := checkCompareIDs(ids); err != nil {
		return Comparison{}, err
	}
	return comparison("planets", s.PlanetsByIDs(ctx, ids), func(p models.Planet) planetComparison {
		return planetComparison{
			ID:             p.ID,
			Name:           p.Name,
			Diameter:       p.Diameter,
			RotationPeriod: p.RotationPeriod,
			OrbitalPeriod:  p.OrbitalPeriod,
			Gravity:        p.Gravity,
			Population:     p.Population,
			Climate:        p.Climate,
			Terrain:        p.Terrain,
			SurfaceWater:   p.SurfaceWater,
			ResidentsCount: len(p.ResidentIDs),
			FilmsCount:     len(p.FilmIDs),
		}
	}, "diameter", "population", "surface_water", "residents_count")
}
