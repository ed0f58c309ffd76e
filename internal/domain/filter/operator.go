package filter

import (
	"reflect"
	"strings"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// Operator is the relation a condition applies between a field and its comparison value.
type Operator string

// Supported operators. Ordering operators compare string forms lexicographically.
const (
	Eq        Operator = "eq"
	Ne        Operator = "ne"
	Gt        Operator = "gt"
	Ge        Operator = "ge"
	Lt        Operator = "lt"
	Le        Operator = "le"
	Contains  Operator = "contains"
	IContains Operator = "icontains"
	Exact     Operator = "exact"
	IExact    Operator = "iexact"
	In        Operator = "in"
)

// Operators returns all supported operators.
func Operators() []Operator {
	return []Operator{Eq, Ne, Gt, Ge, Lt, Le, Contains, IContains, Exact, IExact, In}
}

// IsValid reports whether op is a supported operator.
func (op Operator) IsValid() bool {
	switch op {
	case Eq, Ne, Gt, Ge, Lt, Le, Contains, IContains, Exact, IExact, In:
		return true
	}
	return false
}

// operand is a comparison value prepared once per condition.
type operand struct {
	str   string
	lower string
	set   map[string]struct{} // non-nil only for In over a collection
}

func newOperand(op Operator, value any) operand {
	o := operand{}
	if op == In {
		o.set = membershipSet(value)
	}
	if o.set == nil {
		o.str = record.String(value)
		o.lower = strings.ToLower(o.str)
	}
	return o
}

// membershipSet collects the string forms of a slice, array or map-keyed comparison value.
// Scalars return nil and are matched by substring instead.
func membershipSet(value any) map[string]struct{} {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		set := make(map[string]struct{}, rv.Len())
		for i := range rv.Len() {
			set[record.String(rv.Index(i).Interface())] = struct{}{}
		}
		return set
	case reflect.Map:
		set := make(map[string]struct{}, rv.Len())
		for _, k := range rv.MapKeys() {
			set[record.String(k.Interface())] = struct{}{}
		}
		return set
	default:
		return nil
	}
}

// compare applies op to the string form of a resolved field value.
func (op Operator) compare(field string, o operand) bool {
	switch op {
	case Eq, Exact:
		return field == o.str
	case Ne:
		return field != o.str
	case Gt:
		return field > o.str
	case Ge:
		return field >= o.str
	case Lt:
		return field < o.str
	case Le:
		return field <= o.str
	case Contains:
		return strings.Contains(field, o.str)
	case IContains:
		return strings.Contains(strings.ToLower(field), o.lower)
	case IExact:
		return strings.ToLower(field) == o.lower
	case In:
		if o.set != nil {
			_, ok := o.set[field]
			return ok
		}
		return strings.Contains(o.str, field)
	default:
		return false
	}
}
