package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Node is a queryable element of a parsed document.
type Node interface {
	// Find returns the descendants matching query, in document order.
	Find(query string) ([]Node, error)
	// Text returns the element's text with whitespace runs collapsed.
	Text() string
	// Attr returns an attribute value and whether it was present.
	Attr(name string) (string, bool)
}

// First returns the first match of query under n.
func First(n Node, query string) (Node, bool, error) {
	nodes, err := n.Find(query)
	if err != nil || len(nodes) == 0 {
		return nil, false, err
	}
	return nodes[0], true, nil
}

// cssNode queries with CSS selectors through goquery. Invalid selectors match
// nothing.
type cssNode struct {
	sel *goquery.Selection
}

func (c cssNode) Find(query string) ([]Node, error) {
	found := c.sel.Find(query)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, cssNode{sel: s})
	})
	return nodes, nil
}

func (c cssNode) Text() string {
	return NormalizeWhitespace(c.sel.Text())
}

func (c cssNode) Attr(name string) (string, bool) {
	return c.sel.Attr(name)
}

// xpathNode queries with XPath through htmlquery.
type xpathNode struct {
	n *html.Node
}

func (x xpathNode) Find(query string) ([]Node, error) {
	found, err := htmlquery.QueryAll(x.n, query)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(found))
	for _, n := range found {
		nodes = append(nodes, xpathNode{n: n})
	}
	return nodes, nil
}

func (x xpathNode) Text() string {
	return NormalizeWhitespace(htmlquery.InnerText(x.n))
}

func (x xpathNode) Attr(name string) (string, bool) {
	for _, a := range x.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// NormalizeWhitespace collapses whitespace runs into one space and trims.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
