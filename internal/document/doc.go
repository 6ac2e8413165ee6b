// Package document parses fetched HTML and KML and extracts records from it
// with declarative schemas.
//
// HTML is queried with CSS selectors (goquery); KML and other markup with
// XPath (htmlquery). Both expose the same Node interface, so a Schema works
// against either:
//
//	doc, _ := document.ParseHTML(body, resp.ContentType)
//	rec, err := document.Schema{
//		{Target: "name", Query: "span.image-title-detail", Required: true},
//		{Target: "images", Query: "img", Attr: "src", All: true},
//	}.Extract(doc)
//
// Input that is not valid UTF-8 is decoded using the declared or detected
// charset.
package document
