package coerce_test

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/bluzky/tarams/coerce"
	"github.com/shopspring/decimal"
)

func TestTo_NilForEveryKind(t *testing.T) {
	kinds := []coerce.Kind{
		coerce.Boolean, coerce.String, coerce.Integer, coerce.Float, coerce.Number,
		coerce.Date, coerce.Time, coerce.DateTime, coerce.NaiveDateTime,
		coerce.Decimal, coerce.Map, coerce.Any,
	}
	for _, k := range kinds {
		v, err := coerce.To(k, nil)
		if err != nil || v != nil {
			t.Fatalf("%s: expected (nil, nil), got (%v, %v)", k, v, err)
		}
	}
}

func TestTo_Scalars(t *testing.T) {
	tests := []struct {
		name string
		kind coerce.Kind
		in   any
		want any
		ok   bool
	}{
		{"bool native", coerce.Boolean, true, true, true},
		{"bool string", coerce.Boolean, "false", false, true},
		{"bool one", coerce.Boolean, "1", true, true},
		{"bool case sensitive", coerce.Boolean, "TRUE", nil, false},
		{"bool int", coerce.Boolean, 1, nil, false},

		{"string", coerce.String, "x", "x", true},
		{"string no stringify", coerce.String, 12, nil, false},

		{"int native", coerce.Integer, 42, 42, true},
		{"int8", coerce.Integer, int8(-3), -3, true},
		{"uint", coerce.Integer, uint16(7), 7, true},
		{"int string", coerce.Integer, "123", 123, true},
		{"int json number", coerce.Integer, json.Number("5"), 5, true},
		{"int trailing", coerce.Integer, "12abc", nil, false},
		{"int rejects float", coerce.Integer, 2.0, nil, false},
		{"int rejects float string", coerce.Integer, "2.5", nil, false},
		{"int overflow", coerce.Integer, uint64(math.MaxUint64), nil, false},

		{"float native", coerce.Float, 1.5, 1.5, true},
		{"float promotes int", coerce.Float, 3, 3.0, true},
		{"float string", coerce.Float, "2.25", 2.25, true},
		{"float exponent", coerce.Float, "1e3", 1000.0, true},
		{"float trailing", coerce.Float, "1.5x", nil, false},
		{"float nan", coerce.Float, "NaN", nil, false},
		{"float hex", coerce.Float, "0x1p-2", nil, false},

		{"number int", coerce.Number, 4, 4, true},
		{"number float", coerce.Number, 4.5, 4.5, true},
		{"number int string", coerce.Number, "10", 10, true},
		{"number float string", coerce.Number, "10.5", 10.5, true},
		{"number bad", coerce.Number, "ten", nil, false},

		{"map", coerce.Map, map[string]any{"a": 1}, map[string]any{"a": 1}, true},
		{"map other key type", coerce.Map, map[string]int{"a": 1}, map[string]any{"a": 1}, true},
		{"map rejects list", coerce.Map, []any{1}, nil, false},

		{"any", coerce.Any, []any{1, "a"}, []any{1, "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce.To(tt.kind, tt.in)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Fatalf("got %#v, want %#v", got, tt.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error, got %#v", got)
			}
			if !errors.Is(err, coerce.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestTo_Decimal(t *testing.T) {
	for _, in := range []any{"12.50", json.Number("12.50"), decimal.RequireFromString("12.5"), 12.5} {
		got, err := coerce.To(coerce.Decimal, in)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", in, err)
		}
		if !got.(decimal.Decimal).Equal(decimal.RequireFromString("12.5")) {
			t.Fatalf("%v: got %v", in, got)
		}
	}
	got, err := coerce.To(coerce.Decimal, 7)
	if err != nil || !got.(decimal.Decimal).Equal(decimal.NewFromInt(7)) {
		t.Fatalf("int input: got %v err %v", got, err)
	}
	for _, in := range []any{"NaN", "Infinity", math.Inf(1), math.NaN(), "1.2.3", true} {
		if _, err := coerce.To(coerce.Decimal, in); err == nil {
			t.Fatalf("%v: expected error", in)
		}
	}
}

func TestTo_DateTimeFamily(t *testing.T) {
	utc := time.UTC
	tests := []struct {
		name string
		kind coerce.Kind
		in   any
		want time.Time
	}{
		{"date", coerce.Date, "2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, utc)},
		{"date negative year", coerce.Date, "-0044-03-15", time.Date(-44, 3, 15, 0, 0, 0, 0, utc)},
		{"date from time", coerce.Date, time.Date(2024, 5, 1, 13, 4, 5, 0, utc), time.Date(2024, 5, 1, 0, 0, 0, 0, utc)},
		{"time", coerce.Time, "13:45:10", time.Date(0, 1, 1, 13, 45, 10, 0, utc)},
		{"time fractional truncated", coerce.Time, "13:45:10.987", time.Date(0, 1, 1, 13, 45, 10, 0, utc)},
		{"datetime offset to utc", coerce.DateTime, "2024-01-01T10:00:00+07:00", time.Date(2024, 1, 1, 3, 0, 0, 0, utc)},
		{"datetime no offset assumed utc", coerce.DateTime, "2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, utc)},
		{"datetime space separator", coerce.DateTime, "2024-01-01 10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, utc)},
		{"datetime fractional truncated", coerce.DateTime, "2024-01-01T10:00:00.999Z", time.Date(2024, 1, 1, 10, 0, 0, 0, utc)},
		{"naive drops offset", coerce.NaiveDateTime, "2024-01-01T10:00:00+07:00", time.Date(2024, 1, 1, 10, 0, 0, 0, utc)},
		{"naive plain", coerce.NaiveDateTime, "2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, utc)},
		{"components", coerce.DateTime, map[string]any{"year": 2024, "month": "6", "day": 30, "hour": 8, "minute": 15}, time.Date(2024, 6, 30, 8, 15, 0, 0, utc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce.To(tt.kind, tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.(time.Time).Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTo_DateTimeRejects(t *testing.T) {
	tests := []struct {
		kind coerce.Kind
		in   any
	}{
		{coerce.Date, "2024-02-30"},
		{coerce.Date, "yesterday"},
		{coerce.Date, 20240101},
		{coerce.Time, "25:00:00"},
		{coerce.DateTime, "2024-01-01"},
		{coerce.Date, map[string]any{"year": 2024, "month": 2, "day": 30}},
		{coerce.Date, map[string]any{"year": 2024, "month": 13, "day": 1}},
		{coerce.Date, map[string]any{"year": 2024, "day": 1}},
	}
	for _, tt := range tests {
		if got, err := coerce.To(tt.kind, tt.in); err == nil {
			t.Fatalf("%s %v: expected error, got %v", tt.kind, tt.in, got)
		}
	}
}

func TestTo_EmptyComponentsYieldNil(t *testing.T) {
	got, err := coerce.To(coerce.Date, map[string]any{"year": "", "month": nil, "day": ""})
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestTo_MapsWithoutComponentsAreInvalid(t *testing.T) {
	for _, k := range []coerce.Kind{coerce.Date, coerce.Time, coerce.DateTime, coerce.NaiveDateTime} {
		for _, v := range []any{map[string]any{}, map[string]any{"foo": 1}} {
			got, err := coerce.To(k, v)
			if !errors.Is(err, coerce.ErrInvalid) || got != nil {
				t.Fatalf("%s %v: expected ErrInvalid, got (%v, %v)", k, v, got, err)
			}
		}
	}
}

func TestTo_TimeRejectsSign(t *testing.T) {
	for _, s := range []string{"-10:00:00", "T-10:00:00"} {
		if _, err := coerce.To(coerce.Time, s); !errors.Is(err, coerce.ErrInvalid) {
			t.Fatalf("%q: expected ErrInvalid, got %v", s, err)
		}
	}
	d, err := coerce.To(coerce.Date, "-0044-03-15")
	if err != nil || d.(time.Time).Year() != -44 {
		t.Fatalf("negative year: got (%v, %v)", d, err)
	}
}

func TestTo_Idempotent(t *testing.T) {
	inputs := map[coerce.Kind][]any{
		coerce.Boolean:       {"1", "false", true},
		coerce.String:        {"abc"},
		coerce.Integer:       {"17", int32(4), json.Number("9")},
		coerce.Float:         {"1.25", 3},
		coerce.Number:        {"3", "3.5"},
		coerce.Decimal:       {"1.10", 2},
		coerce.Date:          {"2020-10-10"},
		coerce.Time:          {"08:09:10"},
		coerce.DateTime:      {"2020-10-10T08:09:10+02:00"},
		coerce.NaiveDateTime: {"2020-10-10T08:09:10+02:00"},
		coerce.Map:           {map[string]int{"k": 1}},
	}
	for k, vs := range inputs {
		for _, v := range vs {
			x, err := coerce.To(k, v)
			if err != nil {
				t.Fatalf("%s %v: %v", k, v, err)
			}
			y, err := coerce.To(k, x)
			if err != nil {
				t.Fatalf("%s recoerce %v: %v", k, x, err)
			}
			if !reflect.DeepEqual(x, y) {
				t.Fatalf("%s not idempotent: %#v != %#v", k, x, y)
			}
		}
	}
}

func TestTo_UnknownKind(t *testing.T) {
	_, err := coerce.To(coerce.Kind("uuid"), "x")
	if !errors.Is(err, coerce.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if coerce.Kind("uuid").Builtin() || !coerce.Integer.Builtin() {
		t.Fatalf("Builtin mismatch")
	}
}

func TestAsSlice(t *testing.T) {
	if _, ok := coerce.AsSlice("abc"); ok {
		t.Fatalf("string must not be a sequence")
	}
	if _, ok := coerce.AsSlice([]byte("abc")); ok {
		t.Fatalf("bytes must not be a sequence")
	}
	got, ok := coerce.AsSlice([2]int{1, 2})
	if !ok || !reflect.DeepEqual(got, []any{1, 2}) {
		t.Fatalf("array: got %v %v", got, ok)
	}
	got, ok = coerce.AsSlice([]string{"a"})
	if !ok || !reflect.DeepEqual(got, []any{"a"}) {
		t.Fatalf("typed slice: got %v %v", got, ok)
	}
}
