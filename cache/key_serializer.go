package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// nilSegment marks an absent optional scope parameter.
const nilSegment = "-"

// defaultKeySerializer joins the family and scope parameters with KeySeparator.
// Free-text segments are escaped so user input can never forge a segment
// boundary, which keeps prefix invalidation exact.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from a family and its scope parameters.
func (s *defaultKeySerializer) SerializeKey(family string, scope ...any) string {
	if len(scope) == 0 {
		return family
	}

	parts := make([]string, 0, len(scope)+1)
	parts = append(parts, family)
	for _, arg := range scope {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return nilSegment
	}

	switch val := v.(type) {
	case string:
		return escapeSegment(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return escapeSegment(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nilSegment
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.String:
		// named string types such as model.Kind
		return escapeSegment(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}

	return escapeSegment(fmt.Sprintf("%v", v))
}

// escapeSegment quotes values that would otherwise be ambiguous inside a key.
func escapeSegment(value string) string {
	if value == "" {
		return `""`
	}
	if value == nilSegment || strings.Contains(value, ":") || strings.Contains(value, "#") ||
		strings.ContainsAny(value, "\"\n\t") {
		return strconv.Quote(value)
	}
	return value
}
