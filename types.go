package dracor

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/dracor/internal/domain"
	corpusdomain "github.com/kailas-cloud/dracor/internal/domain/corpus"
)

// Record is a decoded API object with segmented (snake_case) keys.
type Record = map[string]any

// Conditions maps <field-path>__<operator> names to comparison values.
// A nil value disables its condition.
type Conditions map[string]any

// Info describes the API instance.
type Info struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
	ExistDB string `json:"existdb"`
	Base    string `json:"base"`
	OpenAPI string `json:"openapi"`
}

// Corpus-level summaries.
type (
	CorpusSummary   = corpusdomain.Summary
	YearRange       = corpusdomain.YearRange
	NormalizedRange = corpusdomain.NormalizedRange
	AuthorCount     = corpusdomain.AuthorCount
	GenderCount     = corpusdomain.GenderCount
)

// Character is one member of a play's cast.
type Character = corpusdomain.Character

// DownloadFormat selects the representation of network and relation data.
type DownloadFormat string

// Supported download formats.
const (
	FormatCSV     DownloadFormat = "csv"
	FormatGEXF    DownloadFormat = "gexf"
	FormatGraphML DownloadFormat = "graphml"
)

func (f DownloadFormat) accept() (string, error) {
	switch f {
	case FormatCSV:
		return acceptCSV, nil
	case FormatGEXF, FormatGraphML:
		return acceptXML, nil
	default:
		return "", fmt.Errorf("download format %q: %w", string(f), domain.ErrInvalidFormat)
	}
}

// Sex values accepted by SpokenText.
const (
	SexMale    = "MALE"
	SexFemale  = "FEMALE"
	SexUnknown = "UNKNOWN"
)

// SpokenTextOptions narrows SpokenText to the speech of matching characters.
// Relation cannot be combined with RelationActive or RelationPassive.
type SpokenTextOptions struct {
	Sex             string
	Role            string
	Relation        string
	RelationActive  string
	RelationPassive string
}

func (o SpokenTextOptions) query() (map[string]string, error) {
	q := make(map[string]string)
	if o.Sex != "" {
		sex := strings.ToUpper(o.Sex)
		switch sex {
		case SexMale, SexFemale, SexUnknown:
		default:
			return nil, fmt.Errorf("sex %q: %w", o.Sex, domain.ErrBadRequest)
		}
		q["sex"] = sex
	}
	if o.Relation != "" && (o.RelationActive != "" || o.RelationPassive != "") {
		return nil, fmt.Errorf("relation with relation_active/relation_passive: %w",
			domain.ErrInvalidParameterCombination)
	}
	for k, v := range map[string]string{
		"role":             o.Role,
		"relation":         o.Relation,
		"relation_active":  o.RelationActive,
		"relation_passive": o.RelationPassive,
	} {
		if v != "" {
			q[k] = v
		}
	}
	return q, nil
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}
