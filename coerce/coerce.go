// Package coerce converts untyped values (as produced by JSON / YAML decoders
// or hand-built maps) into the concrete Go types of a closed set of kinds.
//
// Coercion is pure and total over the built-in kinds: every call returns
// either the typed value or an error wrapping ErrInvalid. nil always coerces
// to nil. Kinds outside the built-in set are reported with ErrUnknownKind so
// callers can fall back to a Coercible lookup.
package coerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind is a scalar type tag.
type Kind string

const (
	Boolean       Kind = "boolean"
	String        Kind = "string"
	Integer       Kind = "integer"
	Float         Kind = "float"
	Number        Kind = "number"
	Date          Kind = "date"
	Time          Kind = "time"
	DateTime      Kind = "datetime"
	NaiveDateTime Kind = "naive_datetime"
	Decimal       Kind = "decimal"
	Map           Kind = "map"
	Any           Kind = "any"
)

var _builtin = map[Kind]func(any) (any, error){
	Boolean:       toBool,
	String:        toString,
	Integer:       toInt,
	Float:         toFloat,
	Number:        toNumber,
	Decimal:       toDecimal,
	Date:          toDate,
	Time:          toTime,
	DateTime:      toDateTime,
	NaiveDateTime: toNaiveDateTime,
	Map:           toMap,
	Any:           func(v any) (any, error) { return v, nil },
}

// Builtin reports whether k is one of the built-in kinds.
func (k Kind) Builtin() bool {
	_, ok := _builtin[k]
	return ok
}

// Coercible is implemented by user-defined types that perform their own
// coercion. Returning an error wrapping ErrInvalid yields the generic
// "is invalid" message; any other error message is reported as-is.
type Coercible interface {
	Coerce(v any) (any, error)
}

var (
	// ErrInvalid marks a value that cannot be converted to the requested kind.
	ErrInvalid = errors.New("is invalid")
	// ErrUnknownKind is returned by To for kinds outside the built-in set.
	ErrUnknownKind = errors.New("coerce: unknown kind")
)

// Error describes a failed coercion.
type Error struct {
	Kind  Kind
	Value any
	Err   error // Optional: parse error from the underlying converter.
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coerce: cannot cast %T to %s: %v", e.Value, e.Kind, e.Err)
	}
	return fmt.Sprintf("coerce: cannot cast %T to %s", e.Value, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalid, e.Err}
	}
	return []error{ErrInvalid}
}

// To coerces v to kind k.
func To(k Kind, v any) (any, error) {
	fn, ok := _builtin[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	if v == nil {
		return nil, nil
	}
	out, err := fn(v)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &Error{Kind: k, Value: v, Err: err}
	}
	return out, nil
}

func invalid(k Kind, v any) error { return &Error{Kind: k, Value: v} }

func toBool(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch t {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return nil, invalid(Boolean, v)
}

func toString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, invalid(String, v)
}

// intValue converts Go integer kinds to int, rejecting out-of-range values.
func intValue(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(v)
		if err != nil || n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > math.MaxInt {
			return 0, false
		}
		return int(rv.Uint()), true
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch v.(type) {
	case float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func parseInt(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (any, error) {
	if n, ok := intValue(v); ok {
		return n, nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = string(t)
	default:
		return nil, invalid(Integer, v)
	}
	if n, ok := parseInt(s); ok {
		return n, nil
	}
	return nil, invalid(Integer, v)
}

func toFloat(v any) (any, error) {
	if f, ok := floatValue(v); ok {
		return f, nil
	}
	if n, ok := intValue(v); ok {
		return float64(n), nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = string(t)
	default:
		return nil, invalid(Float, v)
	}
	if f, ok := parseFloat(s); ok {
		return f, nil
	}
	return nil, invalid(Float, v)
}

func toNumber(v any) (any, error) {
	if n, ok := intValue(v); ok {
		return n, nil
	}
	if f, ok := floatValue(v); ok {
		return f, nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = string(t)
	default:
		return nil, invalid(Number, v)
	}
	if n, ok := parseInt(s); ok {
		return n, nil
	}
	if f, ok := parseFloat(s); ok {
		return f, nil
	}
	return nil, invalid(Number, v)
}

func toDecimal(v any) (any, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case *decimal.Decimal:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case string:
		return parseDecimal(t)
	case json.Number:
		return parseDecimal(string(t))
	}
	if n, ok := intValue(v); ok {
		return decimal.NewFromInt(int64(n)), nil
	}
	if f, ok := floatValue(v); ok {
		return decimal.NewFromFloat(f), nil
	}
	return nil, invalid(Decimal, v)
}

func parseDecimal(s string) (any, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &Error{Kind: Decimal, Value: s, Err: err}
	}
	return d, nil
}

func toMap(v any) (any, error) {
	if m, ok := AsMap(v); ok {
		return m, nil
	}
	return nil, invalid(Map, v)
}

// AsMap returns v as map[string]any when v is map-shaped. Non-string keys
// are rendered with fmt.Sprint.
func AsMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	if rv.IsNil() {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		var key string
		if k.Kind() == reflect.String {
			key = k.String()
		} else {
			key = fmt.Sprint(k.Interface())
		}
		out[key] = iter.Value().Interface()
	}
	return out, true
}

// AsSlice returns v as []any when v is a slice or array. Strings and byte
// slices are not sequences.
func AsSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
