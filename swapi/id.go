package swapi

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID derives the numeric identifier from a resource URL such as
// "https://swapi.dev/api/people/42/". The trailing non-empty path segment
// must be a positive integer.
func ParseID(url string) (int, error) {
	trimmed := strings.TrimRight(url, "/")
	if trimmed == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedIdentifier, url)
	}
	seg := trimmed
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		seg = trimmed[i+1:]
	}
	id, err := strconv.Atoi(seg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedIdentifier, url)
	}
	return id, nil
}

// IDsFromURLs parses every URL, skipping malformed ones.
func IDsFromURLs(urls []string) []int {
	ids := make([]int, 0, len(urls))
	for _, u := range urls {
		if id, err := ParseID(u); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
