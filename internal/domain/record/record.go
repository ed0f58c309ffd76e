// Package record holds read-only views over decoded corpus payloads.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// IDField is the field every record is identified by.
const IDField = "id"

// Record is one corpus entry keyed by segmented field names.
// Values are primitives, nested records or lists of records.
type Record map[string]any

// Get returns the value stored under a top-level field.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// ID returns the string form of the record's id field.
func (r Record) ID() (string, bool) {
	v, ok := r[IDField]
	if !ok || v == nil {
		return "", false
	}
	return String(v), true
}

// Set is an ordered, immutable sequence of records with a known schema.
type Set struct {
	records []Record
	schema  map[string]struct{}
}

// NewSet builds a Set and computes its schema (the union of all field names).
func NewSet(records []Record) Set {
	schema := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			schema[k] = struct{}{}
		}
	}
	return Set{records: records, schema: schema}
}

// FromMaps builds a Set from decoded JSON objects. Non-object items are skipped.
func FromMaps(items []any) Set {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := AsMap(item); ok {
			records = append(records, Record(m))
		}
	}
	return NewSet(records)
}

// Len returns the number of records.
func (s Set) Len() int { return len(s.records) }

// Records returns the records in their original order.
func (s Set) Records() []Record { return s.records }

// HasField reports whether any record carries the field.
func (s Set) HasField(field string) bool {
	_, ok := s.schema[field]
	return ok
}

// Fields returns the schema sorted by name.
func (s Set) Fields() []string {
	out := make([]string, 0, len(s.schema))
	for k := range s.schema {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IDs returns the ids of all records that have one, in order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if id, ok := r.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// AsMap unwraps the map shapes a decoded payload can contain.
func AsMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return t, true
	default:
		return nil, false
	}
}

// AsList unwraps the list shapes a decoded payload can contain.
func AsList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	case []Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out, true
	default:
		return nil, false
	}
}

// String renders a value the way filter comparisons see it.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
