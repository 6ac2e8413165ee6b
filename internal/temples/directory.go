package temples

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/reconcile"
	"github.com/keith-mcqueen/Temples/internal/record"
)

var directoryLinkSchema = document.Schema{
	{Target: "name", Query: "a", Required: true},
	{Target: "url", Query: "a", Attr: "href"},
}

func (b *Bot) loadDirectory(ctx context.Context) error {
	doc, err := b.getHTML(ctx, "getting primary temple list", b.sources.DirectoryURL)
	if err != nil {
		return err
	}

	rows, err := doc.Find("#temple-list-sortable tr")
	if err != nil {
		return err
	}

	for _, row := range rows {
		if b.limit.Reached(b.engine.Store().Len()) {
			break
		}

		candidate, ok := b.directoryRow(row)
		if !ok {
			continue
		}

		outcome, err := b.engine.Upsert(SourceDirectory, candidate, true)
		if err != nil {
			b.log.Warn("skipping directory entry", zap.Error(err))
			continue
		}
		if outcome != reconcile.Created {
			continue
		}

		key, _ := candidate.String(reconcile.NameField)
		detailURL, _ := candidate.String("url")
		if err := b.loadDetails(ctx, key, detailURL); err != nil {
			return err
		}
	}
	return nil
}

// directoryRow reads a three-cell row: link, "Country, City, State",
// dedication date.
func (b *Bot) directoryRow(row document.Node) (*record.Record, bool) {
	cells, _ := row.Find("td")
	if len(cells) == 0 {
		return nil, false
	}
	if len(cells) != 3 {
		b.log.Warn("wrong number of data cells in temple row", zap.Int("expected", 3), zap.Int("got", len(cells)))
		return nil, false
	}

	link, err := directoryLinkSchema.Extract(cells[0])
	if err != nil {
		b.log.Warn("skipping temple row", zap.Error(err))
		return nil, false
	}

	name, _ := link.String("name")
	href, _ := link.String("url")
	loc := strings.Split(cells[1].Text(), ", ")
	part := func(i int) string {
		if i < len(loc) {
			return loc[i]
		}
		return ""
	}

	return record.Of(
		"name", name,
		"url", resolve(b.sources.DirectoryURL, href),
		"dedicated", cells[2].Text(),
		"city", part(1),
		"state", part(2),
		"country", part(0),
	), true
}
