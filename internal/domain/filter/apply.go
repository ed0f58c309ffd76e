// Package filter evaluates named field-path predicates over record sets.
//
// A condition is named <field-path>__<operator> and paired with a comparison
// value, e.g. written_year__eq=1913 or authors__name__contains="Krylov".
// All conditions are applied as a conjunction.
package filter

import (
	"sort"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// ParseAll parses every condition, sorted by name so that errors and
// evaluation order are deterministic.
func ParseAll(conditions map[string]any) ([]Condition, error) {
	names := make([]string, 0, len(conditions))
	for name := range conditions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Condition, 0, len(names))
	for _, name := range names {
		c, err := Parse(name, conditions[name])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Validate checks that every condition addresses a field in the set's schema.
// An empty set validates trivially. Apply validates against the full input
// before narrowing, so an unknown field is reported even when an earlier
// condition would have emptied the working set.
func Validate(set record.Set, conds []Condition) error {
	if set.Len() == 0 {
		return nil
	}
	for _, c := range conds {
		if !set.HasField(c.Field()) {
			return &ConfigError{Condition: c.Name(), Field: c.Field(), Err: ErrUnknownField}
		}
	}
	return nil
}

// Apply filters set by conditions and returns the ids of the surviving records
// in their original order. Conditions with a nil value are skipped.
func Apply(set record.Set, conditions map[string]any) ([]string, error) {
	conds, err := ParseAll(conditions)
	if err != nil {
		return nil, err
	}
	if err := Validate(set, conds); err != nil {
		return nil, err
	}
	return Select(set, conds).IDs(), nil
}

// Select narrows set by each condition in turn and returns the survivors.
func Select(set record.Set, conds []Condition) record.Set {
	working := set.Records()
	for _, c := range conds {
		if c.Skip() {
			continue
		}
		kept := make([]record.Record, 0, len(working))
		for _, r := range working {
			if c.Match(r) {
				kept = append(kept, r)
			}
		}
		working = kept
	}
	return record.NewSet(working)
}
