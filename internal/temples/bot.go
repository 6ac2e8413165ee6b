package temples

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/config"
	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/fetch"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/reconcile"
	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Source names used in logs and metrics.
const (
	SourceDirectory = "directory"
	SourceGallery   = "gallery"
	SourceKML       = "kml"
)

// Fetcher retrieves a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Response, error)
}

// Bot scrapes the temple sources in a fixed order and reconciles them.
type Bot struct {
	sources config.SourcesConfig
	fetcher Fetcher
	engine  *reconcile.Engine
	limit   *record.Limiter
	log     *logging.Logger
}

// NewBot creates a bot. limit caps the passes as described on Run; a
// negative limit is unbounded.
func NewBot(sources config.SourcesConfig, fetcher Fetcher, engine *reconcile.Engine, limit int, log *logging.Logger) *Bot {
	if log == nil {
		log = logging.NewNop()
	}
	return &Bot{
		sources: sources,
		fetcher: fetcher,
		engine:  engine,
		limit:   record.NewLimiter(limit),
		log:     log.Named("temples"),
	}
}

// Run executes the directory, gallery and geolocation passes in that order.
// The directory and geolocation passes stop once the store holds limit
// entities; the gallery pass stops after limit gallery entries. Fetch
// failures are logged and skipped; only cancellation aborts the run.
func (b *Bot) Run(ctx context.Context) (*reconcile.Store, error) {
	passes := []struct {
		name string
		run  func(context.Context) error
	}{
		{SourceDirectory, b.loadDirectory},
		{SourceGallery, b.loadGallery},
		{SourceKML, b.loadGeolocation},
	}

	for _, pass := range passes {
		if err := pass.run(ctx); err != nil {
			return nil, err
		}
		b.log.Info("pass complete", zap.String("source", pass.name), zap.Int("entities", b.engine.Store().Len()))
	}
	return b.engine.Store(), nil
}

// get fetches a document body. Fetch errors are logged and an empty or
// partial body is returned; cancellation is returned as an error.
func (b *Bot) get(ctx context.Context, purpose, target string) (*fetch.Response, error) {
	b.log.Info(purpose, zap.String("url", target))
	resp, err := b.fetcher.Fetch(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fields := []zap.Field{zap.String("url", target), zap.Error(err)}
		var fe *errors.FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			fields = append(fields, zap.Int("status", fe.StatusCode))
		}
		b.log.Warn("unable to get data", fields...)
	}
	if resp == nil {
		resp = &fetch.Response{URL: target}
	}
	return resp, nil
}

func (b *Bot) getHTML(ctx context.Context, purpose, target string) (document.Node, error) {
	resp, err := b.get(ctx, purpose, target)
	if err != nil {
		return nil, err
	}
	return b.parse(resp, document.ParseHTML)
}

func (b *Bot) parse(resp *fetch.Response, parse func([]byte, string) (document.Node, error)) (document.Node, error) {
	doc, err := parse(resp.Body, resp.ContentType)
	if err != nil {
		b.log.Warn("unable to parse document", zap.String("url", resp.URL), zap.Error(err))
		return parse(nil, "")
	}
	return doc, nil
}

// siteURL joins a site-relative link onto the configured base URL.
func (b *Bot) siteURL(href string) string {
	return b.sources.BaseURL + href
}

// resolve makes href absolute relative to the page it was found on.
func resolve(page, href string) string {
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func text(n document.Node, query string) string {
	found, ok, err := document.First(n, query)
	if err != nil || !ok {
		return ""
	}
	return found.Text()
}
