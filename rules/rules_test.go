package rules_test

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/rules"
)

var rc = tarams.RuleContext{Ctx: context.Background(), Field: "f"}

func check(t *testing.T, r tarams.Rule, v any, want tarams.FieldError) {
	t.Helper()
	if p, ok := r.(tarams.Preparer); ok {
		if err := p.Prepare(); err != nil {
			t.Fatalf("prepare: %v", err)
		}
	}
	got := r.Validate(rc, v)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Validate(%#v) = %#v, want %#v", v, got, want)
	}
}

func TestNumber(t *testing.T) {
	r := rules.Number(rules.Min(18), rules.Lt(65))
	check(t, r, 30, nil)
	check(t, r, 18, nil)
	check(t, r, 17, tarams.Messages{"must be greater than or equal to 18"})
	check(t, r, 65.0, tarams.Messages{"must be less than 65"})
	check(t, r, decimal.RequireFromString("20.5"), nil)
	check(t, r, "30", tarams.Messages{"must be a number"})

	check(t, rules.Number(rules.Equal(3)), 3.0, nil)
	check(t, rules.Number(rules.Gt(0), rules.Max(1)), 2, tarams.Messages{"must be less than or equal to 1"})
	check(t, rules.Number(rules.Gt(5), rules.Lte(1)), 3, tarams.Messages{"must be greater than 5", "must be less than or equal to 1"})
}

func TestNumber_BadBoundFailsPrepare(t *testing.T) {
	r := rules.Number(rules.Min("ten"))
	if err := r.(tarams.Preparer).Prepare(); err == nil {
		t.Fatalf("expected prepare error")
	}
}

func TestLength(t *testing.T) {
	r := rules.Length(rules.Min(2), rules.Max(4))
	check(t, r, "héé", nil)
	check(t, r, "h", tarams.Messages{"length must be greater than or equal to 2"})
	check(t, r, []any{1, 2, 3, 4, 5}, tarams.Messages{"length must be less than or equal to 4"})
	check(t, r, map[string]any{"a": 1, "b": 2}, nil)
	check(t, r, 12, tarams.Messages{"length check supports only string, slice, array and map"})
	check(t, rules.Length(rules.Equal(3)), [3]int{}, nil)

	if err := rules.Length(rules.Min(1.5)).(tarams.Preparer).Prepare(); err == nil {
		t.Fatalf("fractional length bound must fail prepare")
	}
}

func TestFormat(t *testing.T) {
	r := rules.Format(regexp.MustCompile(`^\d+$`))
	check(t, r, "123", nil)
	check(t, r, "12a", tarams.Messages{"does not match format"})
	check(t, r, 123, tarams.Messages{"format check only supports string"})

	check(t, rules.Pattern(`@`), "a@b", nil)
	if err := rules.Pattern(`(`).(tarams.Preparer).Prepare(); err == nil {
		t.Fatalf("invalid pattern must fail prepare")
	}
}

func TestInclusion(t *testing.T) {
	check(t, rules.In("a", "b"), "a", nil)
	check(t, rules.In("a", "b"), "c", tarams.Messages{"not be in the inclusion list"})
	check(t, rules.In(1, 2), 2.0, nil)
	check(t, rules.NotIn("root"), "root", tarams.Messages{"must not be in the exclusion list"})
	check(t, rules.NotIn("root"), "alice", nil)
}

func TestEach(t *testing.T) {
	r := rules.Each(rules.Number(rules.Gt(0)))
	check(t, r, []any{1, nil, 2}, nil)
	check(t, r, []any{1, -1, 3, 0}, tarams.Items{
		{Index: 1, Err: tarams.Messages{"must be greater than 0"}},
		{Index: 3, Err: tarams.Messages{"must be greater than 0"}},
	})
	check(t, r, "abc", tarams.Messages{"each check supports only slice and array"})
}

func TestFunc(t *testing.T) {
	even := rules.Func(func(v any) error {
		if v.(int)%2 != 0 {
			return errors.New("must be even")
		}
		return nil
	})
	check(t, even, 2, nil)
	check(t, even, 3, tarams.Messages{"must be even"})

	check(t, rules.Func(func(v any) bool { return false }), 1, tarams.Messages{"is invalid"})
	check(t, rules.Func(func(v any) any { return tarams.Fail() }), 1, tarams.Messages{"is invalid"})
	check(t, rules.Func(func(v any) any { return "weird" }), 1, tarams.Messages{"bad function"})
	check(t, rules.Func(func(v any) any { return nil }), 1, nil)
	check(t, rules.Func(func(s string) error { return nil }), 1, tarams.Messages{"bad function"})

	sameAs := rules.Func(func(field string, v any, rec map[string]any) error {
		if rec["password"] != v {
			return errors.New(field + " does not match")
		}
		return nil
	})
	ctx := tarams.RuleContext{Field: "confirm", Record: map[string]any{"password": "x"}}
	if got := sameAs.Validate(ctx, "y"); !reflect.DeepEqual(got, tarams.Messages{"confirm does not match"}) {
		t.Fatalf("ternary: %#v", got)
	}
}

func TestFunc_UnknownNamedHookFailsPrepare(t *testing.T) {
	r := rules.Func(tarams.Named("rules-test-missing"))
	if err := r.(tarams.Preparer).Prepare(); !errors.Is(err, tarams.ErrBadHook) {
		t.Fatalf("expected ErrBadHook, got %v", err)
	}
}

func TestIfThen(t *testing.T) {
	r := rules.If("/country", rules.OpEq, "US").Then(rules.Length(rules.Equal(5)))
	us := tarams.RuleContext{Record: map[string]any{"country": "US"}}
	jp := tarams.RuleContext{Record: map[string]any{"country": "JP"}}
	if got := r.Validate(us, "123"); got == nil {
		t.Fatalf("condition met: expected failure")
	}
	if got := r.Validate(jp, "123"); got != nil {
		t.Fatalf("condition not met: got %v", got)
	}

	both := rules.If("age", rules.OpGe, 18).And(rules.If("/address/country", rules.OpNe, "US")).Then(rules.In("ok"))
	rec := tarams.RuleContext{Record: map[string]any{"age": 20, "address": map[string]any{"country": "JP"}}}
	if got := both.Validate(rec, "nope"); got == nil {
		t.Fatalf("composite condition met: expected failure")
	}
}

func TestAny(t *testing.T) {
	r := rules.Any(rules.In("a"), rules.Length(rules.Gt(3)))
	check(t, r, "a", nil)
	check(t, r, "abcd", nil)
	check(t, r, "b", tarams.Messages{"not be in the inclusion list"})
}

func TestUniqueBy(t *testing.T) {
	items := []any{
		map[string]any{"sku": "A"},
		map[string]any{"sku": "B"},
		map[string]any{"sku": "A"},
	}
	check(t, rules.UniqueBy("/sku"), items, tarams.Items{{Index: 2, Err: tarams.Messages{"duplicate value"}}})
	check(t, rules.UniqueBy(""), []any{1, 2, 3}, nil)
}

func TestOpAndBoundConstructors(t *testing.T) {
	if rules.Gt(1).Op != rules.OpGt || rules.Lt(1).Op != rules.OpLt {
		t.Fatalf("Gt/Lt must build strict bounds")
	}
	if rules.Min(1).Op != rules.OpGe || rules.Max(1).Op != rules.OpLe || rules.Equal(1).Op != rules.OpEq {
		t.Fatalf("unexpected bound operators")
	}
	for op, want := range map[rules.Op]string{rules.OpEq: "==", rules.OpNe: "!=", rules.OpLt: "<", rules.OpLe: "<=", rules.OpGt: ">", rules.OpGe: ">="} {
		if op.String() != want {
			t.Fatalf("%d.String() = %q, want %q", op, op.String(), want)
		}
	}
	r := rules.If("/n", rules.OpGt, 3).Then(rules.Number(rules.Lt(10)))
	if got := r.Validate(tarams.RuleContext{Record: map[string]any{"n": 5}}, 12); got == nil {
		t.Fatalf("condition met: expected failure")
	}
	if got := r.Validate(tarams.RuleContext{Record: map[string]any{"n": 2}}, 12); got != nil {
		t.Fatalf("condition not met: got %v", got)
	}
}
