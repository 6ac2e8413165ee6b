package temples

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/document"
	"github.com/keith-mcqueen/Temples/internal/record"
)

var (
	galleryLinkSchema = document.Schema{
		{Target: "name", Required: true},
		{Target: "href", Attr: "href", Required: true},
	}
	galleryPageSchema = document.Schema{
		{Target: "description", Query: "#primary p"},
	}
	imagePageSchema = document.Schema{
		{Target: "description", Query: ".image-details__description p"},
	}
)

func (b *Bot) loadGallery(ctx context.Context) error {
	doc, err := b.getHTML(ctx, "getting temple media list", b.sources.MediaURL)
	if err != nil {
		return err
	}

	links, err := doc.Find("#temple-list-sortable tr td a")
	if err != nil {
		return err
	}

	entries := 0
	for _, link := range links {
		if b.limit.Reached(entries) {
			break
		}

		ref, err := galleryLinkSchema.Extract(link)
		if err != nil {
			b.log.Warn("skipping gallery link", zap.Error(err))
			continue
		}
		name, _ := ref.String("name")
		href, _ := ref.String("href")
		entries++

		candidate := record.Of("name", name, "media-url", b.siteURL(href))
		b.log.Info("adding images", zap.String("name", name))

		if err := b.loadGalleryPage(ctx, candidate); err != nil {
			return err
		}
		if _, err := b.engine.Upsert(SourceGallery, candidate, true); err != nil {
			b.log.Warn("skipping gallery entry", zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}

// loadGalleryPage adds the description and one image per thumbnail.
func (b *Bot) loadGalleryPage(ctx context.Context, candidate *record.Record) error {
	mediaURL, _ := candidate.String("media-url")
	doc, err := b.getHTML(ctx, "getting temple media gallery", mediaURL)
	if err != nil {
		return err
	}

	page, err := galleryPageSchema.Extract(doc)
	if err != nil {
		return err
	}
	candidate.Update(page)

	thumbs, err := doc.Find(".image-gallery a")
	if err != nil {
		return err
	}
	images := make([]any, 0, len(thumbs))
	for _, thumb := range thumbs {
		href, ok := thumb.Attr("href")
		if !ok {
			continue
		}
		image, err := b.loadImage(ctx, b.siteURL(href))
		if err != nil {
			return err
		}
		images = append(images, image)
	}
	candidate.Set("images", images)
	return nil
}

// loadImage reads an image page: its description and one "<label>-url"
// field per download link.
func (b *Bot) loadImage(ctx context.Context, pageURL string) (*record.Record, error) {
	doc, err := b.getHTML(ctx, "getting temple image details", pageURL)
	if err != nil {
		return nil, err
	}

	image, err := imagePageSchema.Extract(doc)
	if err != nil {
		return nil, err
	}

	downloads, err := doc.Find(".image-details__downloads a")
	if err != nil {
		return nil, err
	}
	for _, a := range downloads {
		href, _ := a.Attr("href")
		image.Set(strings.ToLower(a.Text())+"-url", href)
	}
	return image, nil
}
