package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/viniciuslks7/API-Starwars/models"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Errors returned by the catalog.
var (
	// ErrNilClient is returned by New without an upstream client.
	ErrNilClient = errors.New("catalog: client is required")

	// ErrComparisonTooFew is returned when fewer than two of the requested
	// entities could be loaded.
	ErrComparisonTooFew = errors.New("catalog: need at least 2 valid ids to compare")

	// ErrComparisonSize is returned when a comparison asks for fewer than
	// MinCompare or more than MaxCompare ids.
	ErrComparisonSize = errors.New("catalog: comparison takes 2 to 5 ids")

	// ErrUnknownRanking is returned for a ranking name that is not defined.
	ErrUnknownRanking = errors.New("catalog: unknown ranking")
)

// Service exposes typed, decoded views over the upstream client.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: not-found and upstream errors from swapi pass through
//     unchanged so callers can map them with errors.Is.
//   - Lists skip items that fail to decode and log them at Warn.
type Service struct {
	client *swapi.Client
	logger observe.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for skipped items.
func WithLogger(l observe.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service over client.
func New(client *swapi.Client, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	s := &Service{client: client, logger: observe.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Client returns the underlying upstream client.
func (s *Service) Client() *swapi.Client { return s.client }

func decodeAll[T any](ctx context.Context, s *Service, r swapi.Resource, items []swapi.Item, dec func(swapi.Item) (T, error)) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		v, err := dec(it)
		if err != nil {
			s.logger.Warn(ctx, "skipping undecodable item",
				observe.String("resource", r.String()),
				observe.Int("id", it.ID),
				observe.Err(err),
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

func list[T any](ctx context.Context, s *Service, r swapi.Resource, dec func(swapi.Item) (T, error)) ([]T, error) {
	items, err := s.client.GetAll(ctx, r)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, s, r, items, dec), nil
}

func get[T any](ctx context.Context, s *Service, r swapi.Resource, id int, dec func(swapi.Item) (T, error)) (T, error) {
	it, err := s.client.GetItem(ctx, r, id)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := dec(it)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("catalog: %s %d: %w", r, id, err)
	}
	return v, nil
}

func byIDs[T any](ctx context.Context, s *Service, r swapi.Resource, ids []int, dec func(swapi.Item) (T, error)) []T {
	return decodeAll(ctx, s, r, s.client.GetManyByIDs(ctx, r, ids), dec)
}

func search[T any](ctx context.Context, s *Service, r swapi.Resource, q string, dec func(swapi.Item) (T, error)) ([]T, error) {
	items, err := s.client.Search(ctx, r, q)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, s, r, items, dec), nil
}

// summarizers decode an item into the summary view of its resource.
var summarizers = map[swapi.Resource]func(swapi.Item) (any, error){
	swapi.People: func(it swapi.Item) (any, error) {
		v, err := models.DecodePerson(it)
		return v.Summary(), err
	},
	swapi.Films: func(it swapi.Item) (any, error) {
		v, err := models.DecodeFilm(it)
		return v.Summary(), err
	},
	swapi.Starships: func(it swapi.Item) (any, error) {
		v, err := models.DecodeStarship(it)
		return v.Summary(), err
	},
	swapi.Planets: func(it swapi.Item) (any, error) {
		v, err := models.DecodePlanet(it)
		return v.Summary(), err
	},
	swapi.Vehicles: func(it swapi.Item) (any, error) {
		v, err := models.DecodeVehicle(it)
		return v.Summary(), err
	},
	swapi.Species: func(it swapi.Item) (any, error) {
		v, err := models.DecodeSpecies(it)
		return v.Summary(), err
	},
}

// Summaries loads the given ids of r and returns their summary views.
// Missing or undecodable entities are skipped.
func (s *Service) Summaries(ctx context.Context, r swapi.Resource, ids []int) ([]any, error) {
	summarize, ok := summarizers[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", swapi.ErrUnknownResource, r)
	}
	return byIDs(ctx, s, r, ids, summarize), nil
}

// People returns every character.
func (s *Service) People(ctx context.Context) ([]models.Person, error) {
	return list(ctx, s, swapi.People, models.DecodePerson)
}

// Person returns one character with its homeworld name resolved when the
// planet can be loaded.
func (s *Service) Person(ctx context.Context, id int) (models.Person, error) {
	p, err := get(ctx, s, swapi.People, id, models.DecodePerson)
	if err != nil {
		return p, err
	}
	if p.HomeworldID != nil {
		if planet, err := s.Planet(ctx, *p.HomeworldID); err == nil {
			p.HomeworldName = planet.Name
		} else {
			s.logger.Debug(ctx, "homeworld lookup failed", observe.Int("planet_id", *p.HomeworldID), observe.Err(err))
		}
	}
	return p, nil
}

func (s *Service) PeopleByIDs(ctx context.Context, ids []int) []models.Person {
	return byIDs(ctx, s, swapi.People, ids, models.DecodePerson)
}

func (s *Service) SearchPeople(ctx context.Context, q string) ([]models.Person, error) {
	return search(ctx, s, swapi.People, q, models.DecodePerson)
}

// Films returns every film.
func (s *Service) Films(ctx context.Context) ([]models.Film, error) {
	return list(ctx, s, swapi.Films, models.DecodeFilm)
}

func (s *Service) Film(ctx context.Context, id int) (models.Film, error) {
	return get(ctx, s, swapi.Films, id, models.DecodeFilm)
}

func (s *Service) FilmsByIDs(ctx context.Context, ids []int) []models.Film {
	return byIDs(ctx, s, swapi.Films, ids, models.DecodeFilm)
}

// Starships returns every starship.
func (s *Service) Starships(ctx context.Context) ([]models.Starship, error) {
	return list(ctx, s, swapi.Starships, models.DecodeStarship)
}

func (s *Service) Starship(ctx context.Context, id int) (models.Starship, error) {
	return get(ctx, s, swapi.Starships, id, models.DecodeStarship)
}

func (s *Service) StarshipsByIDs(ctx context.Context, ids []int) []models.Starship {
	return byIDs(ctx, s, swapi.Starships, ids, models.DecodeStarship)
}

func (s *Service) SearchStarships(ctx context.Context, q string) ([]models.Starship, error) {
	return search(ctx, s, swapi.Starships, q, models.DecodeStarship)
}

// Planets returns every planet.
func (s *Service) Planets(ctx context.Context) ([]models.Planet, error) {
	return list(ctx, s, swapi.Planets, models.DecodePlanet)
}

func (s *Service) Planet(ctx context.Context, id int) (models.Planet, error) {
	return get(ctx, s, swapi.Planets, id, models.DecodePlanet)
}

func (s *Service) PlanetsByIDs(ctx context.Context, ids []int) []models.Planet {
	return byIDs(ctx, s, swapi.Planets, ids, models.DecodePlanet)
}

func (s *Service) SearchPlanets(ctx context.Context, q string) ([]models.Planet, error) {
	return search(ctx, s, swapi.Planets, q, models.DecodePlanet)
}

// Vehicles returns every vehicle.
func (s *Service) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	return list(ctx, s, swapi.Vehicles, models.DecodeVehicle)
}

func (s *Service) Vehicle(ctx context.Context, id int) (models.Vehicle, error) {
	return get(ctx, s, swapi.Vehicles, id, models.DecodeVehicle)
}

func (s *Service) VehiclesByIDs(ctx context.Context, ids []int) []models.Vehicle {
	return byIDs(ctx, s, swapi.Vehicles, ids, models.DecodeVehicle)
}

// SpeciesList returns every species.
func (s *Service) SpeciesList(ctx context.Context) ([]models.Species, error) {
	return list(ctx, s, swapi.Species, models.DecodeSpecies)
}

func (s *Service) Species(ctx context.Context, id int) (models.Species, error) {
	return get(ctx, s, swapi.Species, id, models.DecodeSpecies)
}

func (s *Service) SpeciesByIDs(ctx context.Context, ids []int) []models.Species {
	return byIDs(ctx, s, swapi.Species, ids, models.DecodeSpecies)
}
