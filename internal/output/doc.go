// Package output writes exports as JSON files.
package output
