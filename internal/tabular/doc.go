// Package tabular converts delimited text files into JSON exports.
//
// A run reads the header, resolves the requested fields, validates the
// primary-key or coordinate fields, then streams rows through the optional
// condition and the row limit into a sequence, a keyed object or a GeoJSON
// feature collection. Gzip-compressed and non-UTF-8 inputs are handled
// transparently.
package tabular
