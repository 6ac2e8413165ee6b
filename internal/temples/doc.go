// Package temples scrapes the temple directory, the media gallery and the
// KML geolocation feed and reconciles them into one record per temple.
//
// Passes run sequentially in a fixed order:
//
//  1. directory: creates entities and enriches each new one from its
//     detail page
//  2. gallery: adds descriptions and image links, creating entities as
//     needed
//  3. geolocation: adds coordinates to known entities only
package temples
