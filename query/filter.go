package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/viniciuslks7/API-Starwars/models"
)

// ErrInvalidParam is returned when a query parameter cannot be parsed or
// fails validation.
var ErrInvalidParam = errors.New("query: invalid parameter")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and wraps failures in ErrInvalidParam.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return nil
}

// Filter returns the items for which keep reports true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Search returns the items whose name contains q, ignoring case.
func Search[T any](items []T, q string, name func(T) string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	return Filter(items, func(it T) bool {
		return strings.Contains(strings.ToLower(name(it)), q)
	})
}

func equalFold(want, got string) bool {
	return want == "" || strings.EqualFold(strings.TrimSpace(want), got)
}

func contains(want, got string) bool {
	return want == "" || strings.Contains(strings.ToLower(got), strings.ToLower(strings.TrimSpace(want)))
}

// within reports whether v lies in [lo, hi]. A nil v fails any set bound.
func within[N int | int64 | float64](v *N, lo, hi *N) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	if hi != nil && *v > *hi {
		return false
	}
	return true
}

// PersonFilter selects characters. Colors and gender match exactly,
// ignoring case.
type PersonFilter struct {
	Gender      string   `json:"gender,omitempty"`
	EyeColor    string   `json:"eye_color,omitempty"`
	HairColor   string   `json:"hair_color,omitempty"`
	HomeworldID *int     `json:"homeworld,omitempty" validate:"omitempty,gt=0"`
	MinHeight   *int     `json:"min_height,omitempty" validate:"omitempty,gte=0"`
	MaxHeight   *int     `json:"max_height,omitempty" validate:"omitempty,gte=0"`
	MinMass     *float64 `json:"min_mass,omitempty" validate:"omitempty,gte=0"`
	MaxMass     *float64 `json:"max_mass,omitempty" validate:"omitempty,gte=0"`
}

func (f PersonFilter) Match(p models.Person) bool {
	if !equalFold(f.Gender, p.Gender) || !equalFold(f.EyeColor, p.EyeColor) || !equalFold(f.HairColor, p.HairColor) {
		return false
	}
	if f.HomeworldID != nil && (p.HomeworldID == nil || *p.HomeworldID != *f.HomeworldID) {
		return false
	}
	return within(p.Height, f.MinHeight, f.MaxHeight) && within(p.Mass, f.MinMass, f.MaxMass)
}

// FilmFilter selects films by director or producer substring.
type FilmFilter struct {
	Director string `json:"director,omitempty"`
	Producer string `json:"producer,omitempty"`
}

func (f FilmFilter) Match(film models.Film) bool {
	return contains(f.Director, film.Director) && contains(f.Producer, film.Producer)
}

// StarshipFilter selects starships. Manufacturer and class match by
// substring.
type StarshipFilter struct {
	Manufacturer  string   `json:"manufacturer,omitempty"`
	StarshipClass string   `json:"starship_class,omitempty"`
	MinCost       *int64   `json:"min_cost,omitempty" validate:"omitempty,gte=0"`
	MaxCost       *int64   `json:"max_cost,omitempty" validate:"omitempty,gte=0"`
	MinLength     *float64 `json:"min_length,omitempty" validate:"omitempty,gte=0"`
	MaxLength     *float64 `json:"max_length,omitempty" validate:"omitempty,gte=0"`
	MinHyperdrive *float64 `json:"min_hyperdrive,omitempty" validate:"omitempty,gte=0"`
	MaxHyperdrive *float64 `json:"max_hyperdrive,omitempty" validate:"omitempty,gte=0"`
}

func (f StarshipFilter) Match(s models.Starship) bool {
	return contains(f.Manufacturer, s.Manufacturer) &&
		contains(f.StarshipClass, s.StarshipClass) &&
		within(s.CostInCredits, f.MinCost, f.MaxCost) &&
		within(s.Length, f.MinLength, f.MaxLength) &&
		within(s.HyperdriveRating, f.MinHyperdrive, f.MaxHyperdrive)
}

// PlanetFilter selects planets. Climate and terrain match by substring.
type PlanetFilter struct {
	Climate       string `json:"climate,omitempty"`
	Terrain       string `json:"terrain,omitempty"`
	MinPopulation *int64 `json:"min_population,omitempty" validate:"omitempty,gte=0"`
	MaxPopulation *int64 `json:"max_population,omitempty" validate:"omitempty,gte=0"`
	MinDiameter   *int   `json:"min_diameter,omitempty" validate:"omitempty,gte=0"`
	MaxDiameter   *int   `json:"max_diameter,omitempty" validate:"omitempty,gte=0"`
}

func (f PlanetFilter) Match(p models.Planet) bool {
	return contains(f.Climate, p.Climate) &&
		contains(f.Terrain, p.Terrain) &&
		within(p.Population, f.MinPopulation, f.MaxPopulation) &&
		within(p.Diameter, f.MinDiameter, f.MaxDiameter)
}

// SpeciesFilter selects species by substring.
type SpeciesFilter struct {
	Classification string `json:"classification,omitempty"`
	Designation    string `json:"designation,omitempty"`
	Language       string `json:"language,omitempty"`
}

func (f SpeciesFilter) Match(s models.Species) bool {
	return contains(f.Classification, s.Classification) &&
		contains(f.Designation, s.Designation) &&
		contains(f.Language, s.Language)
}

// VehicleFilter selects vehicles by substring.
type VehicleFilter struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	VehicleClass string `json:"vehicle_class,omitempty"`
}

func (f VehicleFilter) Match(v models.Vehicle) bool {
	return contains(f.Manufacturer, v.Manufacturer) && contains(f.VehicleClass, v.VehicleClass)
}

// params reads typed values from a query string, collecting errors.
type params struct {
	v    url.Values
	errs []error
}

func (p *params) str(name string) string { return strings.TrimSpace(p.v.Get(name)) }

func (p *params) integer(name string) *int {
	s := p.str(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: not an integer: %q", name, s))
		return nil
	}
	return &n
}

func (p *params) integer64(name string) *int64 {
	s := p.str(name)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: not an integer: %q", name, s))
		return nil
	}
	return &n
}

func (p *params) number(name string) *float64 {
	s := p.str(name)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: not a number: %q", name, s))
		return nil
	}
	return &f
}

func (p *params) finish(dst any) error {
	if err := errors.Join(p.errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return Validate(dst)
}

// ParsePersonFilter reads gender, eye_color, hair_color, homeworld,
// min_height, max_height, min_mass and max_mass.
func ParsePersonFilter(v url.Values) (PersonFilter, error) {
	p := &params{v: v}
	f := PersonFilter{
		Gender:      p.str("gender"),
		EyeColor:    p.str("eye_color"),
		HairColor:   p.str("hair_color"),
		HomeworldID: p.integer("homeworld"),
		MinHeight:   p.integer("min_height"),
		MaxHeight:   p.integer("max_height"),
		MinMass:     p.number("min_mass"),
		MaxMass:     p.number("max_mass"),
	}
	return f, p.finish(f)
}

// ParseFilmFilter reads director and producer.
func ParseFilmFilter(v url.Values) (FilmFilter, error) {
	p := &params{v: v}
	f := FilmFilter{Director: p.str("director"), Producer: p.str("producer")}
	return f, p.finish(f)
}

// ParseStarshipFilter reads manufacturer, starship_class and the cost,
// length and hyperdrive bounds.
func ParseStarshipFilter(v url.Values) (StarshipFilter, error) {
	p := &params{v: v}
	f := StarshipFilter{
		Manufacturer:  p.str("manufacturer"),
		StarshipClass: p.str("starship_class"),
		MinCost:       p.integer64("min_cost"),
		MaxCost:       p.integer64("max_cost"),
		MinLength:     p.number("min_length"),
		MaxLength:     p.number("max_length"),
		MinHyperdrive: p.number("min_hyperdrive"),
		MaxHyperdrive: p.number("max_hyperdrive"),
	}
	return f, p.finish(f)
}

// ParsePlanetFilter reads climate, terrain and the population and
// diameter bounds.
func ParsePlanetFilter(v url.Values) (PlanetFilter, error) {
	p := &params{v: v}
	f := PlanetFilter{
		Climate:       p.str("climate"),
		Terrain:       p.str("terrain"),
		MinPopulation: p.integer64("min_population"),
		MaxPopulation: p.integer64("max_population"),
		MinDiameter:   p.integer("min_diameter"),
		MaxDiameter:   p.integer("max_diameter"),
	}
	return f, p.finish(f)
}

// ParseSpeciesFilter reads classification, designation and language.
func ParseSpeciesFilter(v url.Values) (SpeciesFilter, error) {
	p := &params{v: v}
	f := SpeciesFilter{
		Classification: p.str("classification"),
		Designation:    p.str("designation"),
		Language:       p.str("language"),
	}
	return f, p.finish(f)
}

// ParseVehicleFilter reads manufacturer and vehicle_class.
func ParseVehicleFilter(v url.Values) (VehicleFilter, error) {
	p := &params{v: v}
	f := VehicleFilter{Manufacturer: p.str("manufacturer"), VehicleClass: p.str("vehicle_class")}
	return f, p.finish(f)
}

// ListParams are the paging and sorting parameters shared by list
// endpoints.
type ListParams struct {
	Page     int    `validate:"gte=1"`
	PageSize int    `validate:"gte=1,lte=100"`
	SortBy   string `validate:"omitempty,max=64"`
	Order    Order  `validate:"oneof=asc desc"`
}

// ParseListParams reads page, page_size, sort_by and order. Missing page
// and page_size select 1 and DefaultPageSize; out of range values are an
// error.
func ParseListParams(v url.Values) (ListParams, error) {
	p := &params{v: v}
	lp := ListParams{Page: 1, PageSize: DefaultPageSize, SortBy: p.str("sort_by")}
	if n := p.integer("page"); n != nil {
		lp.Page = *n
	}
	if n := p.integer("page_size"); n != nil {
		lp.PageSize = *n
	}
	order, err := ParseOrder(p.str("order"))
	if err != nil {
		p.errs = append(p.errs, err)
	}
	lp.Order = order
	return lp, p.finish(lp)
}
