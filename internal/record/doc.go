// Package record holds the ordered Record type shared by the tabular and
// reconciliation pipelines, together with field projection, the row limiter
// and the export container.
//
// Records marshal to JSON objects in field insertion order:
//
//	r := record.Of("Name", "Provo", "City", "Provo")
//	b, _ := r.MarshalJSON() // {"Name":"Provo","City":"Provo"}
package record
