package temples

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/document"
)

func parseFloat(s string) (any, error) {
	return strconv.ParseFloat(s, 64)
}

var placemarkSchema = document.Schema{
	{Target: "name", Query: ".//name", Required: true},
	{Target: "latitude", Query: ".//latitude", Required: true, Convert: parseFloat},
	{Target: "longitude", Query: ".//longitude", Required: true, Convert: parseFloat},
}

// loadGeolocation merges coordinates into entities already known; unknown
// placemarks are discarded.
func (b *Bot) loadGeolocation(ctx context.Context) error {
	resp, err := b.get(ctx, "getting temple geolocation data", b.sources.KMLURL)
	if err != nil {
		return err
	}
	doc, err := b.parse(resp, document.ParseMarkup)
	if err != nil {
		return err
	}

	marks, err := doc.Find("//placemark")
	if err != nil {
		return err
	}

	for _, mark := range marks {
		if b.limit.Reached(b.engine.Store().Len()) {
			break
		}

		candidate, err := placemarkSchema.Extract(mark)
		if err != nil {
			b.log.Warn("skipping placemark", zap.String("name", text(mark, ".//name")), zap.Error(err))
			continue
		}
		if _, err := b.engine.Upsert(SourceKML, candidate, false); err != nil {
			b.log.Warn("skipping placemark", zap.Error(err))
		}
	}
	return nil
}
