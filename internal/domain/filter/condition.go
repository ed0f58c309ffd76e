package filter

import (
	"strings"

	"github.com/kailas-cloud/dracor/internal/casing"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// PathSeparator joins field-path segments and the trailing operator in a condition name.
const PathSeparator = "__"

// AggregateSeparator joins sub-field values collected across a list field.
const AggregateSeparator = " && "

// Condition is a parsed <field-path>__<operator> predicate with its comparison value.
type Condition struct {
	name    string
	path    []string
	op      Operator
	value   any
	operand operand
}

// Parse splits name on its last "__" into a field path and an operator.
// Path segments are normalized to segmented form, so writtenYear__eq and
// written_year__eq address the same field. A field name that itself ends in
// an operator token (e.g. "foo__in") cannot be addressed without a trailing
// operator; the last segment always wins.
func Parse(name string, value any) (Condition, error) {
	idx := strings.LastIndex(name, PathSeparator)
	if idx < 0 {
		return Condition{}, &ConfigError{Condition: name, Err: ErrMalformedCondition}
	}
	fieldPath, opToken := name[:idx], name[idx+len(PathSeparator):]

	op := Operator(opToken)
	if !op.IsValid() {
		return Condition{}, &ConfigError{Condition: name, Err: ErrUnknownOperator}
	}

	segments := strings.Split(fieldPath, PathSeparator)
	path := make([]string, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return Condition{}, &ConfigError{Condition: name, Err: ErrMalformedCondition}
		}
		path[i] = casing.ToSegmented(seg)
	}

	return Condition{
		name:    name,
		path:    path,
		op:      op,
		value:   value,
		operand: newOperand(op, value),
	}, nil
}

// Name returns the condition name as supplied.
func (c Condition) Name() string { return c.name }

// Field returns the top-level field the condition addresses.
func (c Condition) Field() string { return c.path[0] }

// Path returns the normalized field path.
func (c Condition) Path() []string { return c.path }

// Operator returns the relation.
func (c Condition) Operator() Operator { return c.op }

// Value returns the comparison value.
func (c Condition) Value() any { return c.value }

// Skip reports whether the condition has no comparison value and narrows nothing.
func (c Condition) Skip() bool { return c.value == nil }

// Match reports whether r satisfies the condition.
// Records lacking the field, or resolving it to nil, never match.
func (c Condition) Match(r record.Record) bool {
	v, ok := resolve(r, c.path)
	if !ok || v == nil {
		return false
	}
	return c.op.compare(record.String(v), c.operand)
}

// resolve walks path through r.
//
// A two-segment path whose first segment is a list collects the second segment
// from every element and joins the values, so authors__name matches any co-author.
// Every other path is a chained map lookup.
func resolve(r record.Record, path []string) (any, bool) {
	head, ok := r.Get(path[0])
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return head, true
	}

	if list, isList := record.AsList(head); isList && len(path) == 2 {
		return aggregate(list, path[1])
	}

	cur := head
	for _, seg := range path[1:] {
		m, isMap := record.AsMap(cur)
		if !isMap {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func aggregate(list []any, field string) (any, bool) {
	values := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := record.AsMap(item)
		if !ok {
			continue
		}
		v, ok := m[field]
		if !ok || v == nil {
			continue
		}
		values = append(values, record.String(v))
	}
	if len(values) == 0 {
		return nil, false
	}
	return strings.Join(values, AggregateSeparator), true
}
