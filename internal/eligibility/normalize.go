package eligibility

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

// dateTimeLayouts are tried in order for DATETIME answers.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	isoDate,
}

// DateParts is the three-field shape produced by split date pickers.
type DateParts struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Normalize converts a raw answer into its canonical value for the data type.
// All raw-shape inspection lives here. Absent answers (nil, empty strings,
// empty arrays, partial date triples) normalize to an empty Value without
// error; evaluation decides what absence means.
func Normalize(dt DataType, raw any) (Value, error) {
	if v, ok := raw.(Value); ok && family(v.dataType) == family(dt) {
		return v, nil
	}
	switch dt {
	case DataString:
		return normalizeString(raw), nil
	case DataInteger, DataDouble:
		return normalizeNumber(dt, raw)
	case DataDate, DataDateTime:
		return normalizeDate(dt, raw)
	case DataArray:
		set := OptionSet{}
		if err := collectOptions(set, raw, 0); err != nil {
			return Value{}, err
		}
		return SetValue(set), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown data type %q", ErrContractViolation, dt)
	}
}

// unwrapScalar peels the wrappers a scalar answer may arrive in: singleton
// slices of any element type and {value,label} objects. The bool result is
// false when the raw value holds several entries, which are returned as a
// []any.
func unwrapScalar(raw any) (any, bool) {
	for {
		switch v := raw.(type) {
		case nil:
			return nil, true
		case Option:
			return v.Value, true
		case string, json.Number, decimal.Decimal, time.Time, DateParts, OptionSet:
			return raw, true
		}
		if items, ok := asSlice(raw); ok {
			switch len(items) {
			case 0:
				return nil, true
			case 1:
				raw = items[0]
				continue
			}
			return items, false
		}
		if m, ok := asStringMap(raw); ok {
			if inner, ok := m["value"]; ok {
				raw = inner
				continue
			}
			return m, true
		}
		return raw, true
	}
}

// asSlice returns the elements of any slice or array. Byte slices are not
// treated as lists.
func asSlice(raw any) ([]any, bool) {
	if v, ok := raw.([]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asStringMap returns any string-keyed map as a map[string]any.
func asStringMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case Answers:
		return v, true
	case OptionSet:
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func normalizeString(raw any) Value {
	raw, single := unwrapScalar(raw)
	if !single {
		parts := make([]string, 0)
		for _, p := range toSlice(raw) {
			if s := strings.TrimSpace(primitiveString(p)); s != "" {
				parts = append(parts, s)
			}
		}
		return StringValue(strings.Join(parts, ", "))
	}
	return StringValue(strings.TrimSpace(primitiveString(raw)))
}

func normalizeNumber(dt DataType, raw any) (Value, error) {
	unwrapped, single := unwrapScalar(raw)
	if !single {
		return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw, Err: fmt.Errorf("multiple values")}
	}

	var d decimal.Decimal
	switch v := unwrapped.(type) {
	case nil:
		return emptyValue(dt), nil
	case decimal.Decimal:
		d = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw, Err: fmt.Errorf("not a finite number")}
		}
		d = decimal.NewFromFloat(v)
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw, Err: fmt.Errorf("not a finite number")}
		}
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int8:
		d = decimal.NewFromInt(int64(v))
	case int16:
		d = decimal.NewFromInt(int64(v))
	case int32:
		d = decimal.NewFromInt32(v)
	case int64:
		d = decimal.NewFromInt(v)
	case uint:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint8:
		d = decimal.NewFromInt(int64(v))
	case uint16:
		d = decimal.NewFromInt(int64(v))
	case uint32:
		d = decimal.NewFromInt(int64(v))
	case uint64:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
	case json.Number:
		return parseNumber(dt, string(v), raw)
	case string:
		return parseNumber(dt, v, raw)
	default:
		return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw}
	}
	return checkInteger(dt, d, raw)
}

func parseNumber(dt DataType, s string, raw any) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return emptyValue(dt), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw, Err: err}
	}
	return checkInteger(dt, d, raw)
}

func checkInteger(dt DataType, d decimal.Decimal, raw any) (Value, error) {
	if dt == DataInteger && !d.IsInteger() {
		return Value{}, &NormalizationError{Kind: InvalidNumber, DataType: dt, Raw: raw, Err: fmt.Errorf("not an integer")}
	}
	return NumberValue(dt, d), nil
}

func normalizeDate(dt DataType, raw any) (Value, error) {
	unwrapped, single := unwrapScalar(raw)
	if !single {
		return Value{}, &NormalizationError{Kind: InvalidDate, DataType: dt, Raw: raw, Err: fmt.Errorf("multiple values")}
	}

	switch v := unwrapped.(type) {
	case nil:
		return emptyValue(dt), nil
	case time.Time:
		return dateFromTime(dt, v), nil
	case DateParts:
		return dateFromParts(dt, v.Day, v.Month, v.Year, raw)
	case string:
		return parseDate(dt, v, raw)
	}
	if m, ok := asStringMap(unwrapped); ok {
		return dateFromParts(dt, primitiveString(m["day"]), primitiveString(m["month"]), primitiveString(m["year"]), raw)
	}
	return Value{}, &NormalizationError{Kind: InvalidDate, DataType: dt, Raw: raw}
}

// dateFromParts combines a {day,month,year} triple. A triple with any
// component missing is "no answer" so partially filled pickers do not fail.
func dateFromParts(dt DataType, day, month, year string, raw any) (Value, error) {
	day, month, year = strings.TrimSpace(day), strings.TrimSpace(month), strings.TrimSpace(year)
	if day == "" || month == "" || year == "" {
		return emptyValue(dt), nil
	}
	for _, part := range []string{day, month, year} {
		if _, err := strconv.Atoi(part); err != nil {
			return Value{}, &NormalizationError{Kind: InvalidDate, DataType: dt, Raw: raw, Err: err}
		}
	}
	iso := fmt.Sprintf("%s-%s-%s", padLeft(year, 4), padLeft(month, 2), padLeft(day, 2))
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return Value{}, &NormalizationError{Kind: InvalidDate, DataType: dt, Raw: raw, Err: err}
	}
	return DateValue(dt, t), nil
}

func parseDate(dt DataType, s string, raw any) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return emptyValue(dt), nil
	}
	if dt == DataDate {
		if t, err := time.Parse(isoDate, s); err == nil {
			return DateValue(dt, t), nil
		}
	}
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return dateFromTime(dt, t), nil
		}
		lastErr = err
	}
	return Value{}, &NormalizationError{Kind: InvalidDate, DataType: dt, Raw: raw, Err: lastErr}
}

// dateFromTime keeps the calendar date for DATE and the instant for DATETIME.
func dateFromTime(dt DataType, t time.Time) Value {
	if t.IsZero() {
		return emptyValue(dt)
	}
	if dt == DataDate {
		y, m, d := t.Date()
		return DateValue(dt, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	return DateValue(dt, t.UTC())
}

// collectOptions flattens a choice answer into set. Lists of any element type
// may hold primitives or {value,label} objects; nesting deeper than one list
// level is rejected.
func collectOptions(set OptionSet, raw any, depth int) error {
	switch v := raw.(type) {
	case nil:
		return nil
	case OptionSet:
		for k := range v {
			set[k] = struct{}{}
		}
		return nil
	case Option:
		addOption(set, v.Value)
		return nil
	case []Option:
		for _, o := range v {
			addOption(set, o.Value)
		}
		return nil
	case string, json.Number, decimal.Decimal:
		addOption(set, primitiveString(v))
		return nil
	}

	if items, ok := asSlice(raw); ok {
		if depth > 0 {
			return &NormalizationError{Kind: InvalidOption, DataType: DataArray, Raw: raw, Err: fmt.Errorf("nested arrays")}
		}
		for _, item := range items {
			if err := collectOptions(set, item, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if m, ok := asStringMap(raw); ok {
		inner, ok := m["value"]
		if !ok {
			return &NormalizationError{Kind: InvalidOption, DataType: DataArray, Raw: raw, Err: fmt.Errorf("object without value")}
		}
		if _, nested := asStringMap(inner); nested {
			return &NormalizationError{Kind: InvalidOption, DataType: DataArray, Raw: raw, Err: fmt.Errorf("nested object value")}
		}
		if _, nested := asSlice(inner); nested {
			return &NormalizationError{Kind: InvalidOption, DataType: DataArray, Raw: raw, Err: fmt.Errorf("list as object value")}
		}
		addOption(set, primitiveString(inner))
		return nil
	}

	switch reflect.ValueOf(raw).Kind() {
	case reflect.Struct, reflect.Pointer, reflect.Func, reflect.Chan, reflect.Map:
		if _, ok := raw.(fmt.Stringer); !ok {
			return &NormalizationError{Kind: InvalidOption, DataType: DataArray, Raw: raw, Err: fmt.Errorf("unsupported option shape %T", raw)}
		}
	}
	addOption(set, primitiveString(raw))
	return nil
}

func addOption(set OptionSet, value string) {
	if value = strings.TrimSpace(value); value != "" {
		set[value] = struct{}{}
	}
}

// primitiveString renders a primitive the way option values and text answers
// are compared.
func primitiveString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(raw)
}

func toSlice(raw any) []any {
	if items, ok := asSlice(raw); ok {
		return items
	}
	return []any{raw}
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
