// Package casing converts field names between the compact form used on the
// wire (writtenYear) and the segmented form used by callers (written_year).
package casing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Separator joins segments in the segmented form.
const Separator = '_'

// ToSegmented converts a compact name to segmented form.
//
// A run of uppercase letters opens one segment. When the run is followed by a
// lowercase letter, its last uppercase letter opens the next segment, so
// numOfXMLNodes becomes num_of_xml_nodes.
func ToSegmented(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			switch {
			case !unicode.IsUpper(prev) && prev != Separator:
				b.WriteRune(Separator)
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				b.WriteRune(Separator)
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ToCompact converts a segmented name to compact form.
// Acronyms do not survive the round trip: num_of_xml_nodes becomes numOfXmlNodes.
func ToCompact(name string) string {
	segments := strings.Split(name, string(Separator))
	var b strings.Builder
	b.Grow(len(name))

	b.WriteString(segments[0])
	for _, seg := range segments[1:] {
		if seg == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(seg[size:])
	}
	return b.String()
}

// TransformKeys returns a copy of v with every map key rewritten by fn.
// Maps and lists are rebuilt recursively; other values are returned as-is.
// The input is never modified.
func TransformKeys(v any, fn func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fn(k)] = TransformKeys(val, fn)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = TransformKeys(m, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = TransformKeys(item, fn)
		}
		return out
	default:
		return v
	}
}

// SegmentedKeys rewrites every key in v to segmented form.
func SegmentedKeys(v any) any { return TransformKeys(v, ToSegmented) }

// CompactKeys rewrites every key in v to compact form.
func CompactKeys(v any) any { return TransformKeys(v, ToCompact) }
