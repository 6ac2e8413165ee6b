package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/geo"
	"github.com/keith-mcqueen/Temples/internal/infrastructure/monitoring"
	"github.com/keith-mcqueen/Temples/internal/logging"
	"github.com/keith-mcqueen/Temples/internal/predicate"
	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Default coordinate columns for GeoJSON output.
const (
	DefaultLatField = "Latitude"
	DefaultLonField = "Longitude"
)

// Options configures one conversion.
type Options struct {
	Input     string
	Fields    []string
	PKField   string
	Limit     int
	Condition string
	Delimiter rune

	GeoJSON  bool
	LatField string
	LonField string
}

// Result is the assembled export.
type Result struct {
	Available []string
	Selected  []string
	Charset   string

	export     *record.Export
	collection *geo.FeatureCollection
}

// Value returns what should be serialized.
func (r *Result) Value() any {
	if r.collection != nil {
		return r.collection
	}
	return r.export
}

// Len returns the number of exported records or features.
func (r *Result) Len() int {
	if r.collection != nil {
		return r.collection.Len()
	}
	return r.export.Len()
}

// Export returns the record export, or nil in GeoJSON mode.
func (r *Result) Export() *record.Export {
	return r.export
}

// Collection returns the feature collection, or nil outside GeoJSON mode.
func (r *Result) Collection() *geo.FeatureCollection {
	return r.collection
}

// Converter turns a delimited file into an export.
type Converter struct {
	opts    Options
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewConverter creates a converter.
func NewConverter(opts Options, log *logging.Logger, metrics *monitoring.Metrics) *Converter {
	if log == nil {
		log = logging.NewNop()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.GeoJSON {
		if opts.LatField == "" {
			opts.LatField = DefaultLatField
		}
		if opts.LonField == "" {
			opts.LonField = DefaultLonField
		}
	}
	return &Converter{opts: opts, log: log.Named("tabular"), metrics: metrics}
}

// Run reads the input and assembles the export. Configuration problems are
// reported before any row is read; malformed rows abort with a ParseError.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	data, err := c.readInput()
	if err != nil {
		return nil, err
	}

	src, name := document.UTF8Reader(data, "")
	result := &Result{Charset: name}
	if name != "utf-8" {
		c.log.Info("decoded input", zap.String("charset", name))
	}

	reader := csv.NewReader(src)
	reader.Comma = c.opts.Delimiter
	reader.FieldsPerRecord = -1
	// DMS seconds markers appear as bare quotes in unquoted cells.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParseError(c.opts.Input, 1, errors.New("missing header row"))
	}
	if err != nil {
		return nil, c.parseError(err, 1)
	}

	result.Available = header
	result.Selected = record.ResolveFields(header, c.opts.Fields)
	c.log.Info("available fields", zap.Strings("fields", header))
	if len(c.opts.Fields) == 0 || len(result.Selected) == len(header) {
		c.log.Info("all available fields will be exported")
	} else {
		c.log.Info("fields selected", zap.Strings("fields", result.Selected))
	}

	if err := c.validate(header); err != nil {
		return nil, err
	}

	pred, err := predicate.Compile(c.opts.Condition)
	if err != nil {
		return nil, err
	}

	if c.opts.GeoJSON {
		result.collection = geo.NewFeatureCollection()
	} else if c.opts.PKField != "" {
		result.export = record.NewKeyed(c.opts.PKField)
	} else {
		result.export = record.NewSequence()
	}

	limiter := record.NewLimiter(c.opts.Limit)
	lastLine := 1
	for !limiter.Exhausted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, c.parseError(err, lastLine+1)
		}
		line, _ := reader.FieldPos(0)
		lastLine = line

		raw := record.FromFields(header, cells)
		ok, err := pred.Eval(raw)
		if err != nil {
			return nil, errors.NewParseError(c.opts.Input, line, err)
		}
		if !ok {
			c.metrics.RecordRow("filtered")
			continue
		}

		projected := record.Project(raw, result.Selected)
		if result.collection != nil {
			feature, err := c.feature(raw, projected)
			if err != nil {
				return nil, errors.NewParseError(c.opts.Input, line, err)
			}
			result.collection.Add(feature)
		} else if err := result.export.Add(raw, projected); err != nil {
			return nil, errors.NewParseError(c.opts.Input, line, err)
		}

		limiter.Take()
		c.metrics.RecordRow("accepted")
	}

	c.metrics.SetRecordsExported(result.Len())
	c.log.Info("conversion complete", zap.Int("records", result.Len()), zap.Int("accepted", limiter.Taken()))
	return result, nil
}

func (c *Converter) readInput() ([]byte, error) {
	info, err := os.Stat(c.opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("input", fmt.Sprintf("file not found: %s", c.opts.Input), nil)
		}
		return nil, errors.NewConfigError("input", "cannot stat input", err)
	}
	if info.IsDir() {
		return nil, errors.NewConfigError("input", "input file must be an actual file, not a directory", nil)
	}

	c.log.Info("reading data", zap.String("path", c.opts.Input))
	data, err := os.ReadFile(c.opts.Input)
	if err != nil {
		return nil, errors.NewConfigError("input", "cannot read input", err)
	}

	mt := mimetype.Detect(data)
	if !mt.Is("application/gzip") {
		return data, nil
	}

	c.log.Info("decompressing input", zap.String("mime", mt.String()))
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseError(c.opts.Input, 0, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.NewParseError(c.opts.Input, 0, err)
	}
	return out, nil
}

func (c *Converter) validate(header []string) error {
	has := func(name string) bool {
		for _, h := range header {
			if h == name {
				return true
			}
		}
		return false
	}

	if c.opts.GeoJSON {
		if c.opts.PKField != "" {
			c.log.Warn("primary key ignored for GeoJSON output", zap.String("pk_field", c.opts.PKField))
		}
		for _, f := range []string{c.opts.LatField, c.opts.LonField} {
			if !has(f) {
				return errors.NewConfigError("geojson", fmt.Sprintf("the coordinate field %q is not one of the available fields", f), nil)
			}
		}
		return nil
	}

	if c.opts.PKField != "" && !has(c.opts.PKField) {
		return errors.NewConfigError("pk-field", fmt.Sprintf("the required primary key field %q is not one of the available fields", c.opts.PKField), nil)
	}
	return nil
}

func (c *Converter) feature(raw, projected *record.Record) (geo.Feature, error) {
	lat, err := c.coordinate(raw, c.opts.LatField)
	if err != nil {
		return geo.Feature{}, err
	}
	lon, err := c.coordinate(raw, c.opts.LonField)
	if err != nil {
		return geo.Feature{}, err
	}
	return geo.NewFeature(lat, lon, projected), nil
}

func (c *Converter) coordinate(raw *record.Record, field string) (float64, error) {
	s, _ := raw.String(field)
	v, err := geo.ParseDMS(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func (c *Converter) parseError(err error, line int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.NewParseError(c.opts.Input, pe.Line, pe.Err)
	}
	return errors.NewParseError(c.opts.Input, line, err)
}
