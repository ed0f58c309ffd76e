package corpus

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// FieldCast is the play payload key listing its characters.
const FieldCast = "characters"

// PlaySummaryFields are the play metadata fields kept by SummarizePlay, in order.
var PlaySummaryFields = []string{
	"id", "title", "subtitle", "wikidata_id", "authors", "genre", "libretto",
	"source", "original_source", "year_written", "year_printed", "year_premiered",
	"year_normalized",
}

// SummarizePlay keeps the bibliographic fields of a segmented play payload.
// Fields the payload lacks are present with a nil value.
func SummarizePlay(play map[string]any) map[string]any {
	out := make(map[string]any, len(PlaySummaryFields))
	for _, f := range PlaySummaryFields {
		out[f] = play[f]
	}
	return out
}

// Character is one member of a play's cast.
type Character struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Sex             string `json:"sex"`
	Gender          string `json:"gender"`
	IsGroup         bool   `json:"is_group"`
	NumOfSpeechActs int    `json:"num_of_speech_acts"`
	NumOfScenes     int    `json:"num_of_scenes"`
	NumOfWords      int    `json:"num_of_words"`
}

// FindCharacter returns the cast entry with the given id.
func FindCharacter(cast []any, id string) (map[string]any, bool) {
	for _, item := range cast {
		m, ok := record.AsMap(item)
		if ok && record.String(m["id"]) == id {
			return m, true
		}
	}
	return nil, false
}

// NewCharacter builds a Character from segmented cast entries.
// Later entries override fields set by earlier ones.
func NewCharacter(entries ...map[string]any) Character {
	merged := make(map[string]any)
	for _, e := range entries {
		for k, v := range e {
			if v != nil {
				merged[k] = v
			}
		}
	}
	return Character{
		ID:              record.String(merged["id"]),
		Name:            record.String(merged["name"]),
		Sex:             record.String(merged["sex"]),
		Gender:          record.String(merged[FieldGender]),
		IsGroup:         strings.EqualFold(record.String(merged["is_group"]), "true"),
		NumOfSpeechActs: intField(merged, "num_of_speech_acts"),
		NumOfScenes:     intField(merged, "num_of_scenes"),
		NumOfWords:      intField(merged, "num_of_words"),
	}
}

func intField(m map[string]any, field string) int {
	n, err := strconv.Atoi(record.String(m[field]))
	if err != nil {
		return 0
	}
	return n
}
