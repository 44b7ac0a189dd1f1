package swapi

import (
	"encoding/json"
	"fmt"
)

// Resource names one upstream collection.
type Resource string

const (
	People    Resource = "people"
	Films     Resource = "films"
	Starships Resource = "starships"
	Planets   Resource = "planets"
	Vehicles  Resource = "vehicles"
	Species   Resource = "species"
)

var allResources = []Resource{People, Films, Starships, Planets, Vehicles, Species}

// Resources returns every supported resource in a stable order.
func Resources() []Resource {
	out := make([]Resource, len(allResources))
	copy(out, allResources)
	return out
}

// ParseResource validates s as a resource name.
func ParseResource(s string) (Resource, error) {
	for _, r := range allResources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// Searchable reports whether the API exposes ?search= for r.
func (r Resource) Searchable() bool {
	switch r {
	case People, Starships, Planets:
		return true
	default:
		return false
	}
}

func (r Resource) String() string { return string(r) }

// Page is one page of a collection as served upstream.
type Page struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// Item is a single upstream object with its derived identifier.
//
// The upstream payload does not carry an id field, so ID always comes from
// the object's self URL or from the request that fetched it.
type Item struct {
	ID  int             `json:"id"`
	Raw json.RawMessage `json:"raw"`
}

// selfURL is the only field the client needs from an item payload.
type selfURL struct {
	URL string `json:"url"`
}
