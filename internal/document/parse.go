package document

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxDocumentSize limits parsed input to 10MB.
const MaxDocumentSize = 10 * 1024 * 1024

// ParseHTML parses an HTML document for CSS selector queries. contentType is
// the response Content-Type header and may be empty.
func ParseHTML(body []byte, contentType string) (Node, error) {
	if err := validate(body); err != nil {
		return nil, err
	}
	r, _ := UTF8Reader(body, contentType)
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return cssNode{sel: doc.Selection}, nil
}

// ParseMarkup parses a markup document (HTML, KML) for XPath queries. The
// HTML parser lowercases element names, so queries must use lowercase.
func ParseMarkup(body []byte, contentType string) (Node, error) {
	if err := validate(body); err != nil {
		return nil, err
	}
	r, _ := UTF8Reader(body, contentType)
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return xpathNode{n: root}, nil
}

// UTF8Reader returns a reader producing UTF-8 text and the name of the
// source charset. Valid UTF-8 passes through. Otherwise the charset declared
// in contentType is used, falling back to detection.
func UTF8Reader(data []byte, contentType string) (io.Reader, string) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return bytes.NewReader(data), "utf-8"
	}

	label := declaredCharset(contentType)
	if label == "" {
		label = DetectCharset(data)
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data), "utf-8"
	}
	return r, label
}

// DetectCharset detects the charset of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

func validate(body []byte) error {
	if len(body) > MaxDocumentSize {
		return fmt.Errorf("document exceeds maximum size of %d bytes", MaxDocumentSize)
	}
	return nil
}
