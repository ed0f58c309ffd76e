// Package corpus derives corpus- and play-level views (year ranges, author counts, cast) from records.
package corpus

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// Payload keys under which the upstream lists a corpus's plays.
const (
	PlaysKey       = "plays"
	LegacyPlaysKey = "dramas"
)

// Play record fields used by the summaries.
const (
	FieldAuthors        = "authors"
	FieldAuthorName     = "name"
	FieldWrittenYear    = "written_year"
	FieldPremiereYear   = "premiere_year"
	FieldPrintYear      = "print_year"
	FieldYearNormalized = "year_normalized"
	FieldGender         = "gender"
)

// YearRange is the earliest and latest year found for a field.
// Years are compared as strings since the upstream reports spans like "1936/1939".
type YearRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Empty reports whether no year was found.
func (r YearRange) Empty() bool { return r.From == "" && r.To == "" }

// NormalizedRange is the earliest and latest normalized year.
type NormalizedRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Summary describes a corpus by its year coverage.
type Summary struct {
	Name            string          `json:"name"`
	Title           string          `json:"title"`
	Repository      string          `json:"repository,omitempty"`
	NumOfPlays      int             `json:"num_of_plays"`
	WrittenYears    YearRange       `json:"written_years"`
	PremiereYears   YearRange       `json:"premiere_years"`
	PrintYears      YearRange       `json:"print_years"`
	NormalizedYears NormalizedRange `json:"normalized_years"`
}

// AuthorCount is the number of plays attributed to one author.
type AuthorCount struct {
	Name  string `json:"name"`
	Plays int    `json:"plays"`
}

// Summarize computes year ranges over the plays in set.
// Plays without a value for a field do not contribute to its range.
func Summarize(name, title, repository string, set record.Set) Summary {
	return Summary{
		Name:            name,
		Title:           title,
		Repository:      repository,
		NumOfPlays:      set.Len(),
		WrittenYears:    yearRange(set, FieldWrittenYear),
		PremiereYears:   yearRange(set, FieldPremiereYear),
		PrintYears:      yearRange(set, FieldPrintYear),
		NormalizedYears: normalizedRange(set),
	}
}

func yearRange(set record.Set, field string) YearRange {
	years := make([]string, 0, set.Len())
	for _, r := range set.Records() {
		if v := record.String(r[field]); v != "" {
			years = append(years, v)
		}
	}
	if len(years) == 0 {
		return YearRange{}
	}
	sort.Strings(years)
	return YearRange{From: years[0], To: years[len(years)-1]}
}

func normalizedRange(set record.Set) NormalizedRange {
	var out NormalizedRange
	found := false
	for _, r := range set.Records() {
		year, err := strconv.Atoi(record.String(r[FieldYearNormalized]))
		if err != nil || year == 0 {
			continue
		}
		if !found || year < out.From {
			out.From = year
		}
		if !found || year > out.To {
			out.To = year
		}
		found = true
	}
	return out
}

// CountAuthors counts plays per author name, most prolific first (ties by name).
// n <= 0 returns every author.
func CountAuthors(set record.Set, n int) []AuthorCount {
	counts := make(map[string]int)
	for _, r := range set.Records() {
		authors, ok := record.AsList(r[FieldAuthors])
		if !ok {
			continue
		}
		for _, a := range authors {
			m, ok := record.AsMap(a)
			if !ok {
				continue
			}
			if name := record.String(m[FieldAuthorName]); name != "" {
				counts[name]++
			}
		}
	}

	out := make([]AuthorCount, 0, len(counts))
	for name, plays := range counts {
		out = append(out, AuthorCount{Name: name, Plays: plays})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Plays != out[j].Plays {
			return out[i].Plays > out[j].Plays
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// CorpusOfPlayID returns the corpus name embedded in a play id ("rus000138" -> "rus").
func CorpusOfPlayID(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, id)
}

// Plays returns the play list of a corpus payload, accepting the legacy key.
func Plays(payload map[string]any) ([]any, bool) {
	for _, key := range []string{PlaysKey, LegacyPlaysKey} {
		if v, ok := payload[key]; ok {
			if list, ok := record.AsList(v); ok {
				return list, true
			}
		}
	}
	return nil, false
}

// GenderCount tallies characters by gender.
type GenderCount struct {
	Male    int `json:"male"`
	Female  int `json:"female"`
	Unknown int `json:"unknown"`
}

// CountGenders tallies a play's character list by its gender field.
func CountGenders(characters []any) GenderCount {
	var gc GenderCount
	for _, c := range characters {
		m, ok := record.AsMap(c)
		if !ok {
			continue
		}
		switch strings.ToUpper(record.String(m[FieldGender])) {
		case "MALE":
			gc.Male++
		case "FEMALE":
			gc.Female++
		case "UNKNOWN":
			gc.Unknown++
		}
	}
	return gc
}
