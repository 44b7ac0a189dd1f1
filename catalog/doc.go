// Package catalog turns raw upstream items into typed records and derives
// the read models served by the HTTP layer: rankings, statistics,
// timelines, comparisons and cross-resource relations.
//
// All data is read through a swapi.Client, so every view shares the same
// cache and upstream protections. Collections are decoded on each call;
// records that fail to decode are skipped rather than failing the view.
package catalog
