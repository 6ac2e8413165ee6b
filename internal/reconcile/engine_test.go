package reconcile

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/keith-mcqueen/Temples/internal/infrastructure/monitoring"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

func marshal(t *testing.T, v interface{ MarshalJSON() ([]byte, error) }) string {
	t.Helper()
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Provo Utah Temple", "Provo Utah"},
		{"Kinshasa Democratic Republic of the Congo Temple", "Kinshasa Democratic Republic of Congo"},
		{"Kinshasa Democratic Republic of the Congo", "Kinshasa Democratic Republic of Congo"},
		{"Templeton", "Templeton"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestDirectoryThenGeolocation(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	out, err := e.Upsert("directory", record.Of("name", "X", "city", "A"), true)
	require.NoError(t, err)
	assert.Equal(t, Created, out)

	out, err = e.Upsert("kml", record.Of("name", "X", "latitude", 1.0, "longitude", 2.0), false)
	require.NoError(t, err)
	assert.Equal(t, Merged, out)

	require.Equal(t, 1, e.Store().Len())
	entity, ok := e.Store().Lookup("X")
	require.True(t, ok)
	assert.Equal(t, `{"name":"X","city":"A","latitude":1,"longitude":2}`, marshal(t, entity))
}

func TestUpsertWithoutCreateLeavesStoreUnchanged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := NewEngine(nil, logging.Wrap(zap.New(core)), nil)

	_, err := e.Upsert("directory", record.Of("name", "Provo Utah Temple"), true)
	require.NoError(t, err)

	out, err := e.Upsert("kml", record.Of("name", "Nowhere Temple", "latitude", 0.0), false)
	require.NoError(t, err)
	assert.Equal(t, Discarded, out)
	assert.Equal(t, 1, e.Store().Len())

	_, ok := e.Store().Lookup("Nowhere")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("adding").Len())
}

func TestUpsertNormalizesKey(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	_, err := e.Upsert("gallery", record.Of("name", "Provo Utah Temple"), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Provo Utah"}, e.Store().Keys())
	entity, _ := e.Store().Lookup("Provo Utah")
	name, _ := entity.String("name")
	assert.Equal(t, "Provo Utah", name)
}

func TestMergeCandidateWinsAndImagesAccumulate(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	_, err := e.Upsert("directory", record.Of(
		"name", "Logan",
		"city", "Logan",
		"images", []any{record.Of("default-url", "a.jpg")},
	), true)
	require.NoError(t, err)

	_, err = e.Upsert("gallery", record.Of(
		"name", "Logan",
		"city", "Logan City",
		"description", "On a hill",
		"images", []any{record.Of("large-url", "b.jpg"), record.Of("small-url", "c.jpg")},
	), true)
	require.NoError(t, err)

	entity, _ := e.Store().Lookup("Logan")
	assert.Equal(t,
		`{"name":"Logan","city":"Logan City","images":[{"default-url":"a.jpg"},{"large-url":"b.jpg"},{"small-url":"c.jpg"}],"description":"On a hill"}`,
		marshal(t, entity))
}

func TestRepeatedUpsertDuplicatesImages(t *testing.T) {
	// Images are accumulated without deduplication.
	e := NewEngine(nil, nil, nil)
	candidate := func() *record.Record {
		return record.Of("name", "Mesa", "city", "Mesa", "images", []any{record.Of("default-url", "m.jpg")})
	}

	_, err := e.Upsert("directory", candidate(), true)
	require.NoError(t, err)
	once := marshal(t, mustLookup(t, e, "Mesa"))

	out, err := e.Upsert("directory", candidate(), true)
	require.NoError(t, err)
	assert.Equal(t, Merged, out)

	entity := mustLookup(t, e, "Mesa")
	city, _ := entity.String("city")
	assert.Equal(t, "Mesa", city)
	assert.Len(t, entity.List("images"), 2)
	assert.NotEqual(t, once, marshal(t, entity))
}

func TestStoredEntityIsIndependentOfCandidate(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	c := record.Of("name", "Provo")
	_, err := e.Upsert("directory", c, true)
	require.NoError(t, err)

	c.Set("city", "changed later")
	assert.False(t, mustLookup(t, e, "Provo").Has("city"))
}

func TestUpsertRequiresName(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	_, err := e.Upsert("kml", record.Of("latitude", 1.0), true)
	assert.True(t, errors.IsMissingField(err))

	_, err = e.Upsert("kml", record.Of("name", 42), true)
	assert.Error(t, err)
	assert.Zero(t, e.Store().Len())
}

func TestEnrichKeepsKey(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	_, err := e.Upsert("directory", record.Of("name", "Provo Utah", "url", "http://x"), true)
	require.NoError(t, err)

	patch := record.Of(
		"images", []any{record.Of("default-url", "p.jpg")},
		"name", "Provo Utah Temple (Closed)",
	)
	require.NoError(t, e.Enrich("Provo Utah", patch))

	assert.Equal(t, []string{"Provo Utah"}, e.Store().Keys())
	entity := mustLookup(t, e, "Provo Utah")
	name, _ := entity.String("name")
	assert.Equal(t, "Provo Utah (Closed)", name)
	assert.Len(t, entity.List("images"), 1)

	err = e.Enrich("Nowhere", record.New())
	assert.True(t, errors.IsNotFound(err))
}

func TestStoreMarshal(t *testing.T) {
	e := NewEngine(NewStore(), nil, nil)
	_, _ = e.Upsert("directory", record.Of("name", "B"), true)
	_, _ = e.Upsert("directory", record.Of("name", "A"), true)
	assert.Equal(t, `{"B":{"name":"B"},"A":{"name":"A"}}`, marshal(t, e.Store()))
}

func TestUpsertMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics()
	e := NewEngine(nil, nil, metrics)

	_, _ = e.Upsert("directory", record.Of("name", "A"), true)
	_, _ = e.Upsert("kml", record.Of("name", "A"), false)
	_, _ = e.Upsert("kml", record.Of("name", "B"), false)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpsertsTotal.WithLabelValues("directory", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpsertsTotal.WithLabelValues("kml", "merged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpsertsTotal.WithLabelValues("kml", "discarded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EntitiesStored))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "merged", Merged.String())
	assert.Equal(t, "discarded", Discarded.String())
}

func mustLookup(t *testing.T, e *Engine, key string) *record.Record {
	t.Helper()
	entity, ok := e.Store().Lookup(key)
	require.True(t, ok)
	return entity
}
