package temples

import (
	"context"
	"strings"

	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/record"
)

const faxPrefix = "Facsimile: "

var (
	physicalSchema = document.Schema{{Target: "address.physical", Query: "li", All: true}}
	mailingSchema  = document.Schema{{Target: "address.mailing", Query: "li", All: true}}

	telephoneSchema = document.Schema{
		{Target: "telephone.main", Query: "li"},
		{Target: "telephone.fax", Query: "li ~ li", Last: true, Convert: func(s string) (any, error) {
			fax, ok := strings.CutPrefix(s, faxPrefix)
			if !ok {
				return "", nil
			}
			return fax, nil
		}},
	}
)

// addressSections maps a column heading to the schema for its contents.
var addressSections = map[string]document.Schema{
	"Physical Address": physicalSchema,
	"Mailing Address":  mailingSchema,
	"Telephone":        telephoneSchema,
}

func (b *Bot) loadDetails(ctx context.Context, key, detailURL string) error {
	if detailURL == "" {
		return nil
	}
	doc, err := b.getHTML(ctx, "getting temple details", detailURL)
	if err != nil {
		return err
	}

	patch, err := b.detailPatch(doc)
	if err != nil {
		return err
	}
	if patch.Len() == 0 {
		return nil
	}
	return b.engine.Enrich(key, patch)
}

// detailPatch extracts the main image, display title, addresses and phone
// numbers. Sections missing from the page are left out.
func (b *Bot) detailPatch(doc document.Node) (*record.Record, error) {
	patch := record.New()

	if tabs, ok, err := document.First(doc, ".photo-main-tabs"); err != nil {
		return nil, err
	} else if ok {
		photo, err := b.photoSchema().Extract(tabs)
		if err != nil {
			return nil, err
		}
		if src, ok := photo.Get("default-url"); ok {
			patch.Set("images", []any{record.Of("default-url", src)})
		}
		if title, ok := photo.Get("name"); ok {
			patch.Set("name", title)
		}
	}

	columns, err := doc.Find("#address-section .three-column")
	if err != nil {
		return nil, err
	}
	for _, col := range columns {
		schema, ok := addressSections[text(col, "h3")]
		if !ok {
			continue
		}
		section, err := schema.Extract(col)
		if err != nil {
			return nil, err
		}
		mergeNested(patch, section)
	}
	return patch, nil
}

func (b *Bot) photoSchema() document.Schema {
	return document.Schema{
		{Target: "default-url", Query: "img", Attr: "src", Convert: func(s string) (any, error) {
			if b.sources.ImagePrefix == "" {
				return s, nil
			}
			return strings.ReplaceAll(s, b.sources.ImagePrefix, b.sources.BaseURL), nil
		}},
		{Target: "name", Query: "span.image-title-detail"},
	}
}

// mergeNested copies src into dst, descending into nested records present
// on both sides.
func mergeNested(dst, src *record.Record) {
	src.Range(func(k string, v any) bool {
		child, isRecord := v.(*record.Record)
		existing, _ := dst.Get(k)
		target, hasRecord := existing.(*record.Record)
		if isRecord && hasRecord {
			mergeNested(target, child)
		} else {
			dst.Set(k, v)
		}
		return true
	})
}
