package catalog

import (
	"context"

	"github.com/viniciuslks7/API-Starwars/models"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Relation names a link from one resource to another.
type Relation struct {
	From swapi.Resource
	Name string
	To   swapi.Resource
	ids  func(swapi.Item) ([]int, error)
}

var relations = []Relation{
	{From: swapi.People, Name: "films", To: swapi.Films, ids: personIDs(func(p models.Person) []int { return p.FilmIDs })},
	{From: swapi.People, Name: "starships", To: swapi.Starships, ids: personIDs(func(p models.Person) []int { return p.StarshipIDs })},
	{From: swapi.People, Name: "vehicles", To: swapi.Vehicles, ids: personIDs(func(p models.Person) []int { return p.VehicleIDs })},
	{From: swapi.People, Name: "species", To: swapi.Species, ids: personIDs(func(p models.Person) []int { return p.SpeciesIDs })},
	{From: swapi.Films, Name: "characters", To: swapi.People, ids: filmIDs(func(f models.Film) []int { return f.CharacterIDs })},
	{From: swapi.Films, Name: "planets", To: swapi.Planets, ids: filmIDs(func(f models.Film) []int { return f.PlanetIDs })},
	{From: swapi.Films, Name: "starships", To: swapi.Starships, ids: filmIDs(func(f models.Film) []int { return f.StarshipIDs })},
	{From: swapi.Films, Name: "vehicles", To: swapi.Vehicles, ids: filmIDs(func(f models.Film) []int { return f.VehicleIDs })},
	{From: swapi.Films, Name: "species", To: swapi.Species, ids: filmIDs(func(f models.Film) []int { return f.SpeciesIDs })},
	{From: swapi.Planets, Name: "residents", To: swapi.People, ids: planetIDs(func(p models.Planet) []int { return p.ResidentIDs })},
	{From: swapi.Planets, Name: "films", To: swapi.Films, ids: planetIDs(func(p models.Planet) []int { return p.FilmIDs })},
	{From: swapi.Starships, Name: "pilots", To: swapi.People, ids: starshipIDs(func(s models.Starship) []int { return s.PilotIDs })},
	{From: swapi.Starships, Name: "films", To: swapi.Films, ids: starshipIDs(func(s models.Starship) []int { return s.FilmIDs })},
	{From: swapi.Species, Name: "people", To: swapi.People, ids: speciesIDs(func(s models.Species) []int { return s.PeopleIDs })},
	{From: swapi.Vehicles, Name: "pilots", To: swapi.People, ids: vehicleIDs(func(v models.Vehicle) []int { return v.PilotIDs })},
}

func idsOf[T any](dec func(swapi.Item) (T, error), pick func(T) []int) func(swapi.Item) ([]int, error) {
	return func(it swapi.Item) ([]int, error) {
		v, err := dec(it)
		if err != nil {
			return nil, err
		}
		return pick(v), nil
	}
}

func personIDs(pick func(models.Person) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodePerson, pick)
}

func filmIDs(pick func(models.Film) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodeFilm, pick)
}

func planetIDs(pick func(models.Planet) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodePlanet, pick)
}

func starshipIDs(pick func(models.Starship) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodeStarship, pick)
}

func speciesIDs(pick func(models.Species) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodeSpecies, pick)
}

func vehicleIDs(pick func(models.Vehicle) []int) func(swapi.Item) ([]int, error) {
	return idsOf(models.DecodeVehicle, pick)
}

// Relations returns the defined relations.
func Relations() []Relation {
	out := make([]Relation, len(relations))
	copy(out, relations)
	return out
}

// LookupRelation finds the relation named name on resource from.
func LookupRelation(from swapi.Resource, name string) (Relation, bool) {
	for _, r := range relations {
		if r.From == from && r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// Related loads entity id of rel.From and returns the summaries of the
// entities it links to through rel. The source entity must exist; linked
// entities that cannot be loaded are skipped.
func (s *Service) Related(ctx context.Context, rel Relation, id int) ([]any, error) {
	it, err := s.client.GetItem(ctx, rel.From, id)
	if err != nil {
		return nil, err
	}
	ids, err := rel.ids(it)
	if err != nil {
		return nil, err
	}
	return s.Summaries(ctx, rel.To, ids)
}
