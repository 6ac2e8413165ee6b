package document

import (
	"fmt"
	"strings"

	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Field describes how one record field is extracted from a document scope.
type Field struct {
	// Target is the record field. Dotted targets ("telephone.main") build
	// nested records.
	Target string
	// Query selects the source element relative to the scope. Empty means
	// the scope itself.
	Query string
	// Attr reads an attribute instead of the text.
	Attr string
	// All collects every match into a list instead of taking the first.
	All bool
	// Last takes the final match that yields a value instead of the first.
	Last bool
	// Required makes an absent value an error.
	Required bool
	// Convert transforms the raw string. Returning "" drops the value.
	Convert func(string) (any, error)
}

// Schema is an ordered list of fields evaluated against one scope.
type Schema []Field

// Extract evaluates every field against scope. Empty strings and empty lists
// count as absent and are left out of the record. A missing required field
// returns a MissingFieldError.
func (s Schema) Extract(scope Node) (*record.Record, error) {
	out := record.New()
	for _, f := range s {
		value, ok, err := f.extract(scope)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Target, err)
		}
		if !ok {
			if f.Required {
				return nil, &errors.MissingFieldError{Field: f.Target, Query: f.Query}
			}
			continue
		}
		SetPath(out, f.Target, value)
	}
	return out, nil
}

func (f Field) extract(scope Node) (any, bool, error) {
	nodes := []Node{scope}
	if f.Query != "" {
		found, err := scope.Find(f.Query)
		if err != nil {
			return nil, false, err
		}
		nodes = found
	}

	if f.Last {
		for i := len(nodes) - 1; i >= 0; i-- {
			v, ok, err := f.value(nodes[i])
			if err != nil || ok {
				return v, ok, err
			}
		}
		return nil, false, nil
	}
	if !f.All {
		if len(nodes) == 0 {
			return nil, false, nil
		}
		return f.value(nodes[0])
	}

	values := make([]any, 0, len(nodes))
	for _, n := range nodes {
		v, ok, err := f.value(n)
		if err != nil {
			return nil, false, err
		}
		if ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return values, true, nil
}

func (f Field) value(n Node) (any, bool, error) {
	var raw string
	if f.Attr != "" {
		v, ok := n.Attr(f.Attr)
		if !ok {
			return nil, false, nil
		}
		raw = strings.TrimSpace(v)
	} else {
		raw = n.Text()
	}
	if raw == "" {
		return nil, false, nil
	}
	if f.Convert == nil {
		return raw, true, nil
	}

	v, err := f.Convert(raw)
	if err != nil {
		return nil, false, err
	}
	if s, isString := v.(string); isString && s == "" {
		return nil, false, nil
	}
	return v, true, nil
}

// SetPath stores value under a dotted path, creating nested records as
// needed. A non-record value in the way is replaced.
func SetPath(r *record.Record, path string, value any) {
	parts := strings.Split(path, ".")
	cur := r
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur.Get(p)
		child, isRecord := next.(*record.Record)
		if !ok || !isRecord {
			child = record.New()
			cur.Set(p, child)
		}
		cur = child
	}
	cur.Set(parts[len(parts)-1], value)
}
