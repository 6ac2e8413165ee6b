// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Every logger carries a run_id field so lines from one invocation of the
// toolkit can be grouped, whichever subcommand produced them.
//
// Example Usage:
//
//	log := logging.NewDefault()
//	log.Info("adding temple", zap.String("name", name))
//	log.Warn("unable to get data", zap.String("url", url), zap.Error(err))
package logging
