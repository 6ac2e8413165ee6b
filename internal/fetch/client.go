package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/keith-mcqueen/Temples/internal/infrastructure/monitoring"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Config defines fetch behavior.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// RateLimit is requests per second; zero or less is unlimited.
	RateLimit float64
}

// Response is a fetched document.
type Response struct {
	URL         string
	StatusCode  int
	Status      string
	ContentType string
	Body        []byte
}

// Client fetches documents sequentially. Requests are never retried.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewClient creates a client backed by a pooled transport.
func NewClient(cfg Config, log *logging.Logger, metrics *monitoring.Metrics) *Client {
	if log == nil {
		log = logging.NewNop()
	}

	// Only the pooled transport is used; retries stay off.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTransport(retryClient.HTTPClient.Transport).
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		restyClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		resty:   restyClient,
		limiter: newLimiter(cfg.RateLimit),
		log:     log.Named("fetch"),
		metrics: metrics,
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Fetch performs a GET. Any status other than 200 OK returns the response together with
// a FetchError so callers can log and still parse the body. A transport
// failure returns an empty response and a FetchError. Cancellation of ctx is
// returned unwrapped.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	c.log.Debug("fetching", zap.String("url", url))
	start := time.Now()
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.metrics.RecordFetch(0, time.Since(start))
		return &Response{URL: url}, &errors.FetchError{URL: url, Err: err}
	}
	c.metrics.RecordFetch(resp.StatusCode(), time.Since(start))

	out := &Response{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		Status:      resp.Status(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	if resp.StatusCode() != http.StatusOK {
		return out, &errors.FetchError{URL: url, StatusCode: out.StatusCode, Status: out.Status}
	}
	return out, nil
}
