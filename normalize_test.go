package tarams_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tarams "github.com/bluzky/tarams"
)

func TestNormalize_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema tarams.Schema
		path   string
		want   error
	}{
		{"missing type", tarams.Schema{"a": tarams.Field{Required: true}}, "a", tarams.ErrMissingType},
		{"nested missing type", tarams.Schema{"a": tarams.Schema{"b": tarams.Field{}}}, "a.b", tarams.ErrMissingType},
		{"array element", tarams.Schema{"a": tarams.ArrayOf(nil)}, "a[]", tarams.ErrMissingType},
		{"unknown kind", tarams.Schema{"a": tarams.Kind("no-such-type")}, "a", tarams.ErrUnknownType},
		{"unsupported declaration", tarams.Schema{"a": 42}, "a", tarams.ErrUnknownType},
		{"cast not a func", tarams.Schema{"a": tarams.Field{Type: tarams.String, Cast: "upcase"}}, "a", tarams.ErrBadHook},
		{"unknown named hook", tarams.Schema{"a": tarams.Field{Type: tarams.String, Into: tarams.Named("normalize-test-missing")}}, "a", tarams.ErrBadHook},
		{"required shape", tarams.Schema{"a": tarams.Field{Type: tarams.String, Required: "yes"}}, "a", tarams.ErrBadRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tarams.Normalize(tt.schema)
			var se *tarams.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
			if se.Path != tt.path {
				t.Fatalf("path = %q, want %q", se.Path, tt.path)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			// Schema errors never travel through the field error channel.
			if _, ok := tarams.AsErrors(err); ok {
				t.Fatalf("schema error reported as field errors")
			}
		})
	}
}

func TestNormalize_BadSignatureIsNotASchemaError(t *testing.T) {
	schema := tarams.Schema{"a": tarams.Field{Type: tarams.String, Cast: func(s string) string { return s }}}
	if _, err := tarams.Normalize(schema); err != nil {
		t.Fatalf("unsupported signatures degrade to field errors: %v", err)
	}
}

func TestNormalize_FieldOrder(t *testing.T) {
	c := tarams.MustNormalize(tarams.Schema{"b": tarams.String, "a": tarams.String, "c": tarams.String})
	if got := c.Fields(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalize_StringKindsAndPlainMaps(t *testing.T) {
	schema := tarams.Schema{
		"n":    "integer",
		"addr": map[string]any{"city": "string"},
	}
	out, err := tarams.Cast(context.Background(), map[string]any{"n": "5", "addr": map[string]any{"city": "Oslo"}}, schema)
	if err != nil {
		t.Fatal(err)
	}
	if out["n"] != 5 || !reflect.DeepEqual(out["addr"], map[string]any{"city": "Oslo"}) {
		t.Fatalf("got %#v", out)
	}
}

func TestMustNormalize_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic")
		}
	}()
	tarams.MustNormalize(tarams.Schema{"a": tarams.Field{}})
}

func TestErrors_ErrorAndFlatten(t *testing.T) {
	errs := tarams.Errors{
		"name": tarams.Messages{"is required"},
		"address": tarams.Errors{
			"city": tarams.Messages{"is required", "is invalid"},
		},
		"items": tarams.Items{{Index: 1, Err: tarams.Errors{"sku": tarams.Messages{"is required"}}}},
	}
	flat := errs.Flatten()
	want := map[string][]string{
		"name":         {"is required"},
		"address.city": {"is required", "is invalid"},
		"items[1].sku": {"is required"},
	}
	if !reflect.DeepEqual(flat, want) {
		t.Fatalf("got %#v", flat)
	}
	if got := errs.Error(); got != "address.city: is required, is invalid; items[1].sku: is required; name: is required" {
		t.Fatalf("Error() = %q", got)
	}

	many := tarams.Errors{}
	for _, k := range []string{"a", "b", "c", "d"} {
		many[k] = tarams.Messages{"is invalid"}
	}
	if got := many.Error(); !strings.HasSuffix(got, "... (total 4)") {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAsErrors(t *testing.T) {
	if _, ok := tarams.AsErrors(nil); ok {
		t.Fatalf("nil is not Errors")
	}
	wrapped := errors.Join(errors.New("context"), tarams.Errors{"a": tarams.Messages{"x"}})
	if errs, ok := tarams.AsErrors(wrapped); !ok || len(errs) != 1 {
		t.Fatalf("wrapped Errors not found")
	}
}
