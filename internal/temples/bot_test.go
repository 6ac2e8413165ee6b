package temples

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/keith-mcqueen/Temples/internal/config"
	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/fetch"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/reconcile"
	"github.com/keith-mcqueen/Temples/internal/record"
)

const directoryPage = `<html><body>
<table id="temple-list-sortable">
  <tr><th>Temple</th><th>Location</th><th>Dedicated</th></tr>
  <tr><td><a href="/temples/provo">Provo Utah Temple</a></td><td>United States, Provo, Utah</td><td>9 February 1972</td></tr>
  <tr><td><a href="/temples/kinshasa">Kinshasa Democratic Republic of the Congo Temple</a></td><td>Democratic Republic of the Congo, Kinshasa</td><td>14 April 2019</td></tr>
  <tr><td>broken</td><td>row</td></tr>
</table>
</body></html>`

const provoDetails = `<html><body>
<div class="photo-main-tabs">
  <img src="/bc/content/provo.jpg">
  <span class="image-title-detail">Provo Utah Temple</span>
</div>
<div id="address-section">
  <div class="three-column"><h3>Physical Address</h3><ul><li>2200 Temple Hill Dr</li><li>Provo, Utah 84604-1701</li></ul></div>
  <div class="three-column"><h3>Mailing Address</h3><ul><li>2200 Temple Hill Dr</li><li>Provo, UT 84604</li></ul></div>
  <div class="three-column"><h3>Telephone</h3><ul><li>(801) 375-5775</li><li>Facsimile: (801) 377-5213</li></ul></div>
  <div class="three-column"><h3>Schedule</h3><ul><li>Closed Mondays</li></ul></div>
</div>
</body></html>`

const mediaPage = `<html><body>
<table id="temple-list-sortable">
  <tr><td><a href="/media/provo">Provo Utah Temple</a></td></tr>
  <tr><td><a href="/media/logan">Logan Utah Temple</a></td></tr>
</table>
</body></html>`

const provoGallery = `<html><body>
<div id="primary"><p>The Provo Utah Temple sits on a hill.</p><p>Second paragraph.</p></div>
<div class="image-gallery"><a href="/image/provo-1"><img src="t.jpg"></a></div>
</body></html>`

const provoImage = `<html><body>
<div class="image-details__description"><p>Front view</p></div>
<div class="image-details__downloads"><a href="http://cdn.local/provo-large.jpg">Large</a><a href="http://cdn.local/provo-small.jpg">Small</a></div>
</body></html>`

const templesKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Placemark><name>Provo Utah Temple</name><LookAt><longitude>-111.6</longitude><latitude>40.2</latitude></LookAt></Placemark>
<Placemark><name>Unknown Temple</name><LookAt><longitude>1</longitude><latitude>2</latitude></LookAt></Placemark>
<Placemark><name>Logan Utah Temple</name><LookAt><longitude>-111.8</longitude><latitude>north</latitude></LookAt></Placemark>
</Document></kml>`

type site struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{hits: make(map[string]int)}
	pages := map[string]string{
		"/directory":     directoryPage,
		"/temples/provo": provoDetails,
		"/media":         mediaPage,
		"/media/provo":   provoGallery,
		"/media/logan":   `<html><body><div id="primary"></div></body></html>`,
		"/image/provo-1": provoImage,
		"/kml":           templesKML,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *site) sources() config.SourcesConfig {
	return config.SourcesConfig{
		DirectoryURL: s.URL + "/directory",
		MediaURL:     s.URL + "/media",
		KMLURL:       s.URL + "/kml",
		BaseURL:      s.URL,
		ImagePrefix:  "/bc/content",
	}
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func runBot(t *testing.T, s *site, limit int, log *logging.Logger) *reconcile.Store {
	t.Helper()
	client := fetch.NewClient(fetch.Config{Timeout: 5 * time.Second}, nil, nil)
	engine := reconcile.NewEngine(nil, log, nil)
	store, err := NewBot(s.sources(), client, engine, limit, log).Run(context.Background())
	require.NoError(t, err)
	return store
}

func marshal(t *testing.T, v interface{ MarshalJSON() ([]byte, error) }) string {
	t.Helper()
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func TestRunReconcilesAllSources(t *testing.T) {
	s := newSite(t)
	core, logs := observer.New(zap.InfoLevel)

	store := runBot(t, s, -1, logging.Wrap(zap.New(core)))

	assert.Equal(t, []string{"Provo Utah", "Kinshasa Democratic Republic of Congo", "Logan Utah"}, store.Keys())

	provo, ok := store.Lookup("Provo Utah")
	require.True(t, ok)
	assert.Equal(t,
		[]string{"name", "url", "dedicated", "city", "state", "country", "images", "address", "telephone", "media-url", "description", "latitude", "longitude"},
		provo.Keys())

	assert.Equal(t, `{"default-url":"`+s.URL+`/provo.jpg"}`, marshal(t, provo.List("images")[0].(*record.Record)))
	assert.Equal(t, `{"description":"Front view","large-url":"http://cdn.local/provo-large.jpg","small-url":"http://cdn.local/provo-small.jpg"}`,
		marshal(t, provo.List("images")[1].(*record.Record)))

	address, _ := provo.Get("address")
	assert.Equal(t,
		`{"physical":["2200 Temple Hill Dr","Provo, Utah 84604-1701"],"mailing":["2200 Temple Hill Dr","Provo, UT 84604"]}`,
		marshal(t, address.(*record.Record)))
	telephone, _ := provo.Get("telephone")
	assert.Equal(t, `{"main":"(801) 375-5775","fax":"(801) 377-5213"}`, marshal(t, telephone.(*record.Record)))

	url, _ := provo.String("url")
	assert.Equal(t, s.URL+"/temples/provo", url)
	city, _ := provo.String("city")
	assert.Equal(t, "Provo", city)
	desc, _ := provo.String("description")
	assert.Equal(t, "The Provo Utah Temple sits on a hill.", desc)
	lat, _ := provo.Get("latitude")
	assert.Equal(t, 40.2, lat)

	// details page returned 404: entity keeps its directory fields only
	kinshasa, ok := store.Lookup("Kinshasa Democratic Republic of Congo")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "url", "dedicated", "city", "state", "country"}, kinshasa.Keys())
	state, _ := kinshasa.String("state")
	assert.Equal(t, "", state)

	// created by the gallery; its placemark had a bad latitude
	logan, ok := store.Lookup("Logan Utah")
	require.True(t, ok)
	assert.Equal(t, `{"name":"Logan Utah","media-url":"`+s.URL+`/media/logan","images":[]}`, marshal(t, logan))

	assert.Equal(t, 1, s.hitCount("/temples/kinshasa"))
	assert.Equal(t, 1, logs.FilterMessage("not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("wrong number of data cells in temple row").Len())
	assert.Equal(t, 1, logs.FilterMessage("unable to get data").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping placemark").Len())
}

func TestRunLimit(t *testing.T) {
	s := newSite(t)

	store := runBot(t, s, 1, nil)
	assert.Equal(t, []string{"Provo Utah"}, store.Keys())

	provo, _ := store.Lookup("Provo Utah")
	assert.True(t, provo.Has("media-url"))
	assert.False(t, provo.Has("latitude"), "geolocation pass stops once the store is full")
	assert.Zero(t, s.hitCount("/temples/kinshasa"))
	assert.Zero(t, s.hitCount("/media/logan"))
}

func TestRunZeroLimit(t *testing.T) {
	s := newSite(t)

	store := runBot(t, s, 0, nil)
	assert.Zero(t, store.Len())
	assert.Equal(t, `{}`, marshal(t, store))
	assert.Zero(t, s.hitCount("/temples/provo"))
}

func TestRunSurvivesUnreachableSources(t *testing.T) {
	s := newSite(t)
	sources := s.sources()
	sources.MediaURL = s.URL + "/gone"
	sources.KMLURL = "http://127.0.0.1:1/kml"

	client := fetch.NewClient(fetch.Config{Timeout: time.Second}, nil, nil)
	store, err := NewBot(sources, client, reconcile.NewEngine(nil, nil, nil), -1, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestRunCancelled(t *testing.T) {
	s := newSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := fetch.NewClient(fetch.Config{Timeout: time.Second}, nil, nil)
	_, err := NewBot(s.sources(), client, reconcile.NewEngine(nil, nil, nil), -1, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetailPatchFax(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  string
	}{
		{"prefixed", `<li>(801) 555-1000</li><li>Facsimile: (801) 555-2000</li>`, `{"main":"(801) 555-1000","fax":"(801) 555-2000"}`},
		{"mention before fax", `<li>(801) 555-1000</li><li>Call Facsimile: desk</li><li>Facsimile: (801) 555-2000</li>`, `{"main":"(801) 555-1000","fax":"(801) 555-2000"}`},
		{"last prefixed wins", `<li>(801) 555-1000</li><li>Facsimile: (801) 555-2000</li><li>Facsimile: (801) 555-3000</li>`, `{"main":"(801) 555-1000","fax":"(801) 555-3000"}`},
		{"first line is never fax", `<li>Facsimile: (801) 555-2000</li>`, `{"main":"Facsimile: (801) 555-2000"}`},
		{"no fax", `<li>(801) 555-1000</li><li>Open daily</li>`, `{"main":"(801) 555-1000"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<div id="address-section"><div class="three-column"><h3>Telephone</h3><ul>` + tt.items + `</ul></div></div>`
			doc, err := document.ParseHTML([]byte(page), "")
			require.NoError(t, err)

			b := NewBot(config.Default().Sources, nil, nil, -1, logging.NewNop())
			patch, err := b.detailPatch(doc)
			require.NoError(t, err)

			telephone, ok := patch.Get("telephone")
			require.True(t, ok)
			assert.Equal(t, tt.want, marshal(t, telephone.(*record.Record)))
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://a.local/temples/x", resolve("http://a.local/church/find?lang=eng", "/temples/x"))
	assert.Equal(t, "http://b.local/y", resolve("http://a.local/", "http://b.local/y"))
}
