// Package fetch retrieves remote documents for the scrape pipeline.
//
// The client is resty over a pooled transport with an optional politeness
// rate limit. Failed requests are not retried; callers log the FetchError
// and carry on with whatever body was returned.
package fetch
