// Package cli wires configuration, logging and metrics into the temples
// commands.
package cli
