package dracor

import (
	"github.com/kailas-cloud/dracor/internal/casing"
	"github.com/kailas-cloud/dracor/internal/domain/filter"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// Filter returns the ids of the records satisfying every condition, in input order.
// Record keys are normalized to segmented form first, so payloads straight
// from the API can be passed unchanged. Records without an "id" field are
// matched but contribute no id.
func Filter(records []map[string]any, conditions Conditions) ([]string, error) {
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = casing.SegmentedKeys(r)
	}
	return filter.Apply(record.FromMaps(items), conditions)
}

// ToSegmented converts a compact (camelCase) name to segmented (snake_case) form.
func ToSegmented(name string) string { return casing.ToSegmented(name) }

// ToCompact converts a segmented (snake_case) name to compact (camelCase) form.
func ToCompact(name string) string { return casing.ToCompact(name) }
