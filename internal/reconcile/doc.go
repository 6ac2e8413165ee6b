// Package reconcile merges records about the same real-world entity from
// several sources into one canonical record per normalized name.
//
// Later sightings overwrite scalar fields; images accumulate across sources
// without deduplication.
package reconcile
