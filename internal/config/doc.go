// Package config provides layered configuration for the temples toolkit.
//
// Values start from built-in defaults, are overlaid by an optional YAML or
// TOML file (selected by extension), then by environment variables. A .env
// file in the working directory is loaded into the environment first.
// Command-line flags override the result in the cli package.
//
// Configuration Sections:
//   - Logging: log level and output format
//   - Fetch: timeout, user agent and politeness rate limit for scraping
//   - Sources: directory, media gallery and KML endpoints
//   - Metrics: optional node-exporter textfile
//
// Example Usage:
//
//	cfg, err := config.Load("temples.yaml")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Sources.DirectoryURL)
//
// Environment Variables:
//   - LOG_LEVEL, LOG_DEV
//   - FETCH_TIMEOUT, FETCH_USER_AGENT, FETCH_RATE_LIMIT
//   - TEMPLES_DIRECTORY_URL, TEMPLES_MEDIA_URL, TEMPLES_KML_URL
//   - TEMPLES_BASE_URL, TEMPLES_IMAGE_PREFIX
//   - METRICS_FILE
package config
