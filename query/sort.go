package query

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/viniciuslks7/API-Starwars/models"
)

// ErrUnknownSortKey is returned when a sort field is not registered for
// the resource.
var ErrUnknownSortKey = errors.New("query: unknown sort key")

// ErrInvalidOrder is returned for an order other than asc or desc.
var ErrInvalidOrder = errors.New("query: invalid sort order")

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "asc", "desc" or "" (asc), case-insensitively.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

type valueKind uint8

const (
	kindNil valueKind = iota
	kindNum
	kindStr
)

// Value is a comparable sort key. The zero Value is nil and sorts last in
// both directions.
type Value struct {
	kind valueKind
	num  float64
	str  string
}

// Num returns a numeric Value, or nil when p is nil.
func Num[N int | int64 | float64](p *N) Value {
	if p == nil {
		return Value{}
	}
	return Value{kind: kindNum, num: float64(*p)}
}

// Int returns a numeric Value.
func Int(n int) Value { return Value{kind: kindNum, num: float64(n)} }

// Str returns a string Value compared case-insensitively.
func Str(s string) Value { return Value{kind: kindStr, str: strings.ToLower(s)} }

// Date returns a Value ordering by day, or nil when d is nil.
func Date(d *models.Date) Value {
	if d == nil {
		return Value{}
	}
	return Value{kind: kindNum, num: float64(d.Unix())}
}

// Time returns a Value ordering by instant, or nil when ts is nil.
func Time(ts *time.Time) Value {
	if ts == nil {
		return Value{}
	}
	return Value{kind: kindNum, num: float64(ts.UnixNano())}
}

func compareValues(a, b Value) int {
	if a.kind == kindStr && b.kind == kindStr {
		return strings.Compare(a.str, b.str)
	}
	return cmp.Compare(a.num, b.num)
}

// Keys maps a sort field name to its key function.
type Keys[T any] map[string]func(T) Value

// Names returns the registered field names, sorted.
func (k Keys[T]) Names() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Sort returns a sorted copy of items. An empty field returns the items in
// their original order. Nil values sort last regardless of order, and
// equal keys keep their relative order.
func Sort[T any](items []T, keys Keys[T], field string, order Order) ([]T, error) {
	out := slices.Clone(items)
	if field == "" {
		return out, nil
	}
	key, ok := keys[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownSortKey, field, strings.Join(keys.Names(), ", "))
	}

	slices.SortStableFunc(out, func(a, b T) int {
		va, vb := key(a), key(b)
		switch {
		case va.kind == kindNil && vb.kind == kindNil:
			return 0
		case va.kind == kindNil:
			return 1
		case vb.kind == kindNil:
			return -1
		}
		c := compareValues(va, vb)
		if order == Desc {
			return -c
		}
		return c
	})
	return out, nil
}

// Sort keys per resource.
var (
	PeopleSortKeys = Keys[models.Person]{
		"name":       func(p models.Person) Value { return Str(p.Name) },
		"height":     func(p models.Person) Value { return Num(p.Height) },
		"mass":       func(p models.Person) Value { return Num(p.Mass) },
		"birth_year": func(p models.Person) Value { return Str(p.BirthYear) },
		"created":    func(p models.Person) Value { return Time(p.Created) },
	}

	FilmSortKeys = Keys[models.Film]{
		"title":        func(f models.Film) Value { return Str(f.Title) },
		"episode_id":   func(f models.Film) Value { return Int(f.EpisodeID) },
		"release_date": func(f models.Film) Value { return Date(f.ReleaseDate) },
	}

	StarshipSortKeys = Keys[models.Starship]{
		"name":              func(s models.Starship) Value { return Str(s.Name) },
		"length":            func(s models.Starship) Value { return Num(s.Length) },
		"cost_in_credits":   func(s models.Starship) Value { return Num(s.CostInCredits) },
		"hyperdrive_rating": func(s models.Starship) Value { return Num(s.HyperdriveRating) },
		"mglt":              func(s models.Starship) Value { return Num(s.MGLT) },
	}

	PlanetSortKeys = Keys[models.Planet]{
		"name":       func(p models.Planet) Value { return Str(p.Name) },
		"diameter":   func(p models.Planet) Value { return Num(p.Diameter) },
		"population": func(p models.Planet) Value { return Num(p.Population) },
	}

	SpeciesSortKeys = Keys[models.Species]{
		"name":             func(s models.Species) Value { return Str(s.Name) },
		"average_height":   func(s models.Species) Value { return Num(s.AverageHeight) },
		"average_lifespan": func(s models.Species) Value { return Num(s.AverageLifespan) },
	}

	VehicleSortKeys = Keys[models.Vehicle]{
		"name":            func(v models.Vehicle) Value { return Str(v.Name) },
		"length":          func(v models.Vehicle) Value { return Num(v.Length) },
		"cost_in_credits": func(v models.Vehicle) Value { return Num(v.CostInCredits) },
	}
)
