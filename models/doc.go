// Package models holds the typed records the service exposes and the
// functions that normalize raw upstream objects into them.
//
// Upstream values arrive as loosely typed strings. Decoding maps the
// placeholders "unknown", "n/a", "none", "indefinite" and "" to nil for
// numeric fields, strips thousands separators, accepts float text for
// integers, and turns related resource URLs into identifier slices,
// skipping any URL whose identifier cannot be parsed.
package models
