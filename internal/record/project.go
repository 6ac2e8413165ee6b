package record

// ResolveFields returns the fields to export given the source's available
// fields and the requested ones. The result keeps source order. An empty
// request, or a request naming nothing available, selects every field.
func ResolveFields(available, requested []string) []string {
	if len(requested) == 0 {
		return clone(available)
	}

	wanted := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		wanted[name] = struct{}{}
	}

	selected := make([]string, 0, len(requested))
	for _, name := range available {
		if _, ok := wanted[name]; ok {
			selected = append(selected, name)
		}
	}

	if len(selected) == 0 {
		return clone(available)
	}
	return selected
}

// Project returns a new record holding only the given fields of raw, in the
// order given. Fields absent from raw are skipped.
func Project(raw *Record, fields []string) *Record {
	out := &Record{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	for _, name := range fields {
		if v, ok := raw.Get(name); ok {
			out.Set(name, v)
		}
	}
	return out
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
