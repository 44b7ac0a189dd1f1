package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/viniciuslks7/API-Starwars/models"
)

// Ranking limits.
const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 50
)

// RankEntry is one row of a ranking. Details carries descriptive fields of
// the ranked entity.
type RankEntry struct {
	Rank    int               `json:"rank"`
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Value   float64           `json:"value"`
	Details map[string]string `json:"details,omitempty"`
}

// Ranking is an ordered top-N list.
type Ranking struct {
	Name    string      `json:"name"`
	Metric  string      `json:"metric"`
	Entries []RankEntry `json:"entries"`
}

type rankingDef struct {
	metric string
	build  func(ctx context.Context, s *Service) ([]RankEntry, error)
}

var rankings = map[string]rankingDef{
	"tallest-characters": {metric: "height", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		people, err := s.People(ctx)
		return rankBy(people, func(p models.Person) *float64 { return asFloat(p.Height) }, personEntry), err
	}},
	"heaviest-characters": {metric: "mass", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		people, err := s.People(ctx)
		return rankBy(people, func(p models.Person) *float64 { return p.Mass }, personEntry), err
	}},
	"fastest-starships": {metric: "mglt", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		ships, err := s.Starships(ctx)
		return rankBy(ships, func(v models.Starship) *float64 { return asFloat(v.MGLT) }, starshipEntry), err
	}},
	"most-expensive-starships": {metric: "cost_in_credits", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		ships, err := s.Starships(ctx)
		return rankBy(ships, func(v models.Starship) *float64 { return asFloat(v.CostInCredits) }, starshipEntry), err
	}},
	"largest-starships": {metric: "length", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		ships, err := s.Starships(ctx)
		return rankBy(ships, func(v models.Starship) *float64 { return v.Length }, starshipEntry), err
	}},
	"most-populated-planets": {metric: "population", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		planets, err := s.Planets(ctx)
		return rankBy(planets, func(p models.Planet) *float64 { return asFloat(p.Population) }, planetEntry), err
	}},
	"largest-planets": {metric: "diameter", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		planets, err := s.Planets(ctx)
		return rankBy(planets, func(p models.Planet) *float64 { return asFloat(p.Diameter) }, planetEntry), err
	}},
	"films-with-most-characters": {metric: "characters", build: func(ctx context.Context, s *Service) ([]RankEntry, error) {
		films, err := s.Films(ctx)
		return rankBy(films, func(f models.Film) *float64 {
			n := float64(len(f.CharacterIDs))
			return &n
		}, filmEntry), err
	}},
}

// RankingNames returns the defined ranking names, sorted.
func RankingNames() []string {
	names := make([]string, 0, len(rankings))
	for name := range rankings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NormalizeLimit clamps a ranking limit to 1..MaxRankingLimit, with zero
// selecting DefaultRankingLimit.
func NormalizeLimit(limit int) int {
	if limit == 0 {
		return DefaultRankingLimit
	}
	return max(1, min(MaxRankingLimit, limit))
}

// Ranking builds the named ranking. Entities without a value for the
// metric are left out.
func (s *Service) Ranking(ctx context.Context, name string, limit int) (Ranking, error) {
	def, ok := rankings[name]
	if !ok {
		return Ranking{}, fmt.Errorf("%w: %q", ErrUnknownRanking, name)
	}
	entries, err := def.build(ctx, s)
	if err != nil {
		return Ranking{}, err
	}
	limit = NormalizeLimit(limit)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return Ranking{Name: name, Metric: def.metric, Entries: entries}, nil
}

func asFloat[N int | int64](p *N) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

// rankBy orders items by value descending, dropping nil values. Ties keep
// upstream order.
func rankBy[T any](items []T, value func(T) *float64, entry func(T) RankEntry) []RankEntry {
	out := make([]RankEntry, 0, len(items))
	for _, it := range items {
		v := value(it)
		if v == nil {
			continue
		}
		e := entry(it)
		e.Value = *v
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b RankEntry) int { return cmp.Compare(b.Value, a.Value) })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func personEntry(p models.Person) RankEntry {
	return RankEntry{ID: p.ID, Name: p.Name, Details: map[string]string{"gender": p.Gender}}
}

func starshipEntry(v models.Starship) RankEntry {
	return RankEntry{ID: v.ID, Name: v.Name, Details: map[string]string{
		"model":          v.Model,
		"starship_class": v.StarshipClass,
		"manufacturer":   v.Manufacturer,
	}}
}

func planetEntry(p models.Planet) RankEntry {
	return RankEntry{ID: p.ID, Name: p.Name, Details: map[string]string{"climate": p.Climate, "terrain": p.Terrain}}
}

func filmEntry(f models.Film) RankEntry {
	return RankEntry{ID: f.ID, Name: f.Title, Details: map[string]string{"episode_id": fmt.Sprint(f.EpisodeID)}}
}
