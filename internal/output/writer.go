package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
)

// Encode writes v to w as compact JSON.
func Encode(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes v as JSON to path, replacing any existing file. Paths
// ending in .gz are gzip-compressed. The file is written to a temporary name
// in the same directory and renamed into place.
func WriteFile(path string, v any) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	var w io.Writer = buf
	var gz *gzip.Writer
	if IsCompressed(path) {
		gz = gzip.NewWriter(buf)
		w = gz
	}

	if err = Encode(w, v); err != nil {
		return err
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return fmt.Errorf("compress output: %w", err)
		}
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// IsCompressed reports whether path selects gzip output.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}
