package eligibility

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OptionSet is the canonical form of a choice answer.
type OptionSet map[string]struct{}

// NewOptionSet builds a set from option values.
func NewOptionSet(values ...string) OptionSet {
	set := make(OptionSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Has reports whether the value is selected.
func (s OptionSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Equal reports whether both sets hold exactly the same values.
func (s OptionSet) Equal(other OptionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Intersects reports whether at least one value is in both sets.
func (s OptionSet) Intersects(other OptionSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// Sorted returns the values in lexical order.
func (s OptionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Value is a normalized, comparable answer. The zero Value of a data type is
// "no answer". Values are only produced by Normalize and the constructors below.
type Value struct {
	dataType DataType
	present  bool
	str      string
	num      decimal.Decimal
	when     time.Time
	set      OptionSet
}

// StringValue wraps a canonical text answer.
func StringValue(s string) Value {
	return Value{dataType: DataString, present: s != "", str: s}
}

// NumberValue wraps a canonical numeric answer.
func NumberValue(dt DataType, d decimal.Decimal) Value {
	return Value{dataType: dt, present: true, num: d}
}

// DateValue wraps a canonical date or datetime answer.
func DateValue(dt DataType, t time.Time) Value {
	return Value{dataType: dt, present: !t.IsZero(), when: t}
}

// SetValue wraps a canonical choice answer.
func SetValue(set OptionSet) Value {
	return Value{dataType: DataArray, present: len(set) > 0, set: set}
}

func emptyValue(dt DataType) Value {
	return Value{dataType: dt}
}

// DataType returns the data type the value was normalized for.
func (v Value) DataType() DataType { return v.dataType }

// IsEmpty reports whether the value represents "no answer".
func (v Value) IsEmpty() bool { return !v.present }

// String returns the text of a STRING value.
func (v Value) String() string { return v.str }

// Number returns the decimal of an INTEGER or DOUBLE value.
func (v Value) Number() decimal.Decimal { return v.num }

// Time returns the instant of a DATE or DATETIME value.
func (v Value) Time() time.Time { return v.when }

// Set returns the selected options of an ARRAY value.
func (v Value) Set() OptionSet { return v.set }

// Equal compares two values of the same data type. DATE values compare by
// calendar date.
func (v Value) Equal(o Value) bool {
	if v.present != o.present || family(v.dataType) != family(o.dataType) {
		return false
	}
	if !v.present {
		return true
	}
	switch family(v.dataType) {
	case DataString:
		return v.str == o.str
	case DataDouble:
		return v.num.Equal(o.num)
	case DataDate:
		if v.dataType == DataDate || o.dataType == DataDate {
			return sameDay(v.when, o.when)
		}
		return v.when.Equal(o.when)
	case DataArray:
		return v.set.Equal(o.set)
	}
	return false
}

// family groups data types that share a canonical representation.
func family(dt DataType) DataType {
	switch dt {
	case DataInteger, DataDouble:
		return DataDouble
	case DataDate, DataDateTime:
		return DataDate
	}
	return dt
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
