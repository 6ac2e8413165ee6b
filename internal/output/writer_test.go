package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keith-mcqueen/Temples/internal/record"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteFile(path, []*record.Record{record.Of("b", "1", "a", "2")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"b":"1","a":"2"}]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json.gz")
	require.NoError(t, WriteFile(path, record.Of("Provo", record.Of("city", "Provo"))))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"Provo":{"city":"Provo"}}`, string(data))
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "out.json"), []string{})
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]int{"a": 1}))
	assert.Equal(t, `{"a":1}`, buf.String())
	assert.True(t, IsCompressed("x.JSON.GZ"))
	assert.False(t, IsCompressed("x.json"))
}
