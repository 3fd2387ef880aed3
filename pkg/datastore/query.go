package datastore

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// DateRange is a filter criterion matching dates between From and To,
// bounds inclusive. A zero bound leaves that side open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Sort returns a new slice ordered by the named field. The path may be
// dotted for nested fields ("address.city"), string comparison is
// case-insensitive, and equal keys keep their input order. direction is
// "asc" or "desc".
func Sort[T any](records []T, fieldPath, direction string) []T {
	out := make([]T, len(records))
	copy(out, records)

	desc := strings.EqualFold(direction, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		c := compareValues(fieldValue(out[i], fieldPath), fieldValue(out[j], fieldPath))
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Filter returns the records matching every criterion. A criterion value
// may be a scalar (exact match), a slice (membership), or a DateRange.
// Nil, empty-string, and empty-slice criteria are ignored.
func Filter[T any](records []T, criteria map[string]interface{}) []T {
	out := make([]T, 0, len(records))
	for _, record := range records {
		if matches(record, criteria) {
			out = append(out, record)
		}
	}
	return out
}

func matches(record interface{}, criteria map[string]interface{}) bool {
	for path, criterion := range criteria {
		if criterion == nil {
			continue
		}
		value := fieldValue(record, path)

		switch c := criterion.(type) {
		case DateRange:
			if c.From.IsZero() && c.To.IsZero() {
				continue
			}
			t, ok := asTime(value)
			if !ok {
				return false
			}
			if !c.From.IsZero() && t.Before(c.From) {
				return false
			}
			if !c.To.IsZero() && t.After(endOfDay(c.To)) {
				return false
			}
		case string:
			if c == "" {
				continue
			}
			if !scalarEqual(value, c) {
				return false
			}
		default:
			rv := reflect.ValueOf(criterion)
			if rv.Kind() == reflect.Slice {
				if rv.Len() == 0 {
					continue
				}
				found := false
				for i := 0; i < rv.Len(); i++ {
					if scalarEqual(value, rv.Index(i).Interface()) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
				continue
			}
			if !scalarEqual(value, criterion) {
				return false
			}
		}
	}
	return true
}

// endOfDay widens a date-only upper bound so that records stamped later the
// same day still match.
func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

// fieldValue resolves a dotted path against a struct, matching segments to
// json tag names first and exported field names second. Nil pointers along
// the way resolve to nil.
func fieldValue(record interface{}, path string) interface{} {
	v := reflect.ValueOf(record)
	for _, segment := range strings.Split(path, ".") {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil
		}

		field, ok := structField(v, segment)
		if !ok {
			return nil
		}
		v = field
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == name || strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// compareValues orders two field values: -1, 0, or 1. Strings compare
// case-insensitively; nil sorts first.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	as := strings.ToLower(fmt.Sprint(a))
	bs := strings.ToLower(fmt.Sprint(b))
	return strings.Compare(as, bs)
}

func scalarEqual(value, criterion interface{}) bool {
	if value == nil {
		return false
	}
	if vf, ok := asFloat(value); ok {
		if cf, ok := asFloat(criterion); ok {
			return vf == cf
		}
	}
	return fmt.Sprint(value) == fmt.Sprint(criterion)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
