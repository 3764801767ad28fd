package scrub_test

import (
	"reflect"
	"testing"

	"github.com/bluzky/tarams/scrub"
)

func TestBlanks(t *testing.T) {
	in := map[string]any{
		"name":  "  ",
		"email": "a@b",
		"tags":  []any{"", "x", nil},
		"address": map[string]any{
			"city": "",
			"zip":  "100",
		},
		"n": 0,
	}
	want := map[string]any{
		"name":  nil,
		"email": "a@b",
		"tags":  []any{nil, "x", nil},
		"address": map[string]any{
			"city": nil,
			"zip":  "100",
		},
		"n": 0,
	}
	got := scrub.Blanks(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if in["name"] != "  " {
		t.Fatalf("input was modified")
	}
}

func TestBlanks_TypedContainers(t *testing.T) {
	got := scrub.Blanks(map[string]string{"a": "", "b": "x"})
	want := map[string]any{"a": nil, "b": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
	if got := scrub.Blanks([]string{"", "y"}); !reflect.DeepEqual(got, []any{nil, "y"}) {
		t.Fatalf("got %#v", got)
	}
}

func TestNils(t *testing.T) {
	in := map[string]any{
		"a": nil,
		"b": 1,
		"c": []any{nil, 2, map[string]any{"d": nil, "e": "x"}},
	}
	want := map[string]any{
		"b": 1,
		"c": []any{2, map[string]any{"e": "x"}},
	}
	if got := scrub.Nils(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRecord(t *testing.T) {
	got := scrub.Record(map[string]any{"q": ""})
	if v, ok := got["q"]; !ok || v != nil {
		t.Fatalf("got %#v", got)
	}
}
