// Package query provides in-memory pagination, sorting, filtering and name
// search over decoded records, plus parsers for the matching URL query
// parameters.
package query
