// Package images serves entity pictures for the API.
//
// Character images are resolved through a public JSON index keyed by the
// upstream character id, with a manual name table for ids the index lists
// under a different number. Film posters and starship pictures come from
// static tables. Anything that cannot be resolved or fetched is served as
// a generated SVG placeholder.
//
// Fetched images are kept in the proxy's own cache; placeholders never are,
// so a source that recovers is picked up on the next request.
package images
