// Package rules provides the built-in validation rule families. Rules run
// against coerced, non-nil values; every rule of a field runs and failures
// are merged in declaration order.
package rules

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"unicode/utf8"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/coerce"
	"github.com/bluzky/tarams/i18n"
	"github.com/bluzky/tarams/internal/hook"
	js "github.com/bluzky/tarams/jsonschema"
)

func messages(msgs ...string) tarams.FieldError {
	if len(msgs) == 0 {
		return nil
	}
	return tarams.Messages(msgs)
}

// ---------- Number ----------

type numberRule struct {
	bounds   []Bound
	once     sync.Once
	resolved []resolvedBound
	err      error
}

// Number checks a numeric value against bounds. Non-numeric values fail with
// "must be a number".
func Number(bounds ...Bound) tarams.Rule { return &numberRule{bounds: bounds} }

func (r *numberRule) Prepare() error {
	r.once.Do(func() { r.resolved, r.err = resolveBounds("number", r.bounds, false) })
	return r.err
}

func (r *numberRule) Validate(_ tarams.RuleContext, v any) tarams.FieldError {
	if err := r.Prepare(); err != nil {
		return messages(i18n.T(i18n.CodeBadFunction, nil))
	}
	d, ok := toDecimal(v)
	if !ok {
		return messages(i18n.T(i18n.CodeNotNumber, nil))
	}
	var out []string
	for _, b := range r.resolved {
		if !b.holds(d) {
			out = append(out, b.message(_numberCodes))
		}
	}
	return messages(out...)
}

func (r *numberRule) DescribeJSONSchema(s *js.Schema) {
	if r.Prepare() != nil {
		return
	}
	for _, b := range r.resolved {
		f := b.dec.InexactFloat64()
		switch b.Op {
		case OpEq:
			s.Const = b.Value
		case OpGe:
			s.Minimum = js.Float(f)
		case OpGt:
			s.ExclusiveMinimum = js.Float(f)
		case OpLe:
			s.Maximum = js.Float(f)
		case OpLt:
			s.ExclusiveMaximum = js.Float(f)
		}
	}
}

// ---------- Length ----------

type lengthRule struct {
	bounds   []Bound
	once     sync.Once
	resolved []resolvedBound
	err      error
}

// Length checks the length of a string (in characters), slice, array or map
// against integer bounds.
func Length(bounds ...Bound) tarams.Rule { return &lengthRule{bounds: bounds} }

func (r *lengthRule) Prepare() error {
	r.once.Do(func() { r.resolved, r.err = resolveBounds("length", r.bounds, true) })
	return r.err
}

func (r *lengthRule) Validate(_ tarams.RuleContext, v any) tarams.FieldError {
	if err := r.Prepare(); err != nil {
		return messages(i18n.T(i18n.CodeBadFunction, nil))
	}
	n, ok := lengthOf(v)
	if !ok {
		return messages(i18n.T(i18n.CodeLengthUnsupported, nil))
	}
	d, _ := toDecimal(n)
	var out []string
	for _, b := range r.resolved {
		if !b.holds(d) {
			out = append(out, b.message(_lengthCodes))
		}
	}
	return messages(out...)
}

func lengthOf(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func (r *lengthRule) DescribeJSONSchema(s *js.Schema) {
	if r.Prepare() != nil {
		return
	}
	for _, b := range r.resolved {
		n := int(b.dec.IntPart())
		lo, hi := -1, -1
		switch b.Op {
		case OpEq:
			lo, hi = n, n
		case OpGe:
			lo = n
		case OpGt:
			lo = n + 1
		case OpLe:
			hi = n
		case OpLt:
			hi = n - 1
		}
		var minP, maxP **int
		switch s.Type {
		case "array":
			minP, maxP = &s.MinItems, &s.MaxItems
		case "object":
			minP, maxP = &s.MinProperties, &s.MaxProperties
		default:
			minP, maxP = &s.MinLength, &s.MaxLength
		}
		if lo >= 0 {
			*minP = js.Int(lo)
		}
		if hi >= 0 {
			*maxP = js.Int(hi)
		}
	}
}

// ---------- Format ----------

type formatRule struct {
	expr string
	once sync.Once
	re   *regexp.Regexp
	err  error
}

// Format checks that a string value matches re anywhere in the string.
func Format(re *regexp.Regexp) tarams.Rule {
	r := &formatRule{re: re}
	r.once.Do(func() {
		if re == nil {
			r.err = fmt.Errorf("rules: format requires a regular expression")
		}
	})
	return r
}

// Pattern is Format with an expression compiled when the schema is
// normalized.
func Pattern(expr string) tarams.Rule { return &formatRule{expr: expr} }

func (r *formatRule) Prepare() error {
	r.once.Do(func() {
		r.re, r.err = regexp.Compile(r.expr)
		if r.err != nil {
			r.err = fmt.Errorf("rules: pattern %q: %w", r.expr, r.err)
		}
	})
	return r.err
}

func (r *formatRule) Validate(_ tarams.RuleContext, v any) tarams.FieldError {
	if err := r.Prepare(); err != nil {
		return messages(i18n.T(i18n.CodeBadFunction, nil))
	}
	s, ok := v.(string)
	if !ok {
		return messages(i18n.T(i18n.CodeFormatUnsupported, nil))
	}
	if !r.re.MatchString(s) {
		return messages(i18n.T(i18n.CodeFormat, nil))
	}
	return nil
}

func (r *formatRule) DescribeJSONSchema(s *js.Schema) {
	if r.Prepare() == nil {
		s.Pattern = r.re.String()
	}
}

// ---------- In / NotIn ----------

type inclusionRule struct {
	values  []any
	exclude bool
}

// In requires the value to be one of values. Numbers compare by value
// across Go numeric types.
func In(values ...any) tarams.Rule { return inclusionRule{values: values} }

// NotIn requires the value not to be one of values.
func NotIn(values ...any) tarams.Rule { return inclusionRule{values: values, exclude: true} }

func (r inclusionRule) Validate(_ tarams.RuleContext, v any) tarams.FieldError {
	found := false
	for _, want := range r.values {
		if equalValues(v, want) {
			found = true
			break
		}
	}
	switch {
	case !r.exclude && !found:
		return messages(i18n.T(i18n.CodeInclusion, nil))
	case r.exclude && found:
		return messages(i18n.T(i18n.CodeExclusion, nil))
	}
	return nil
}

func (r inclusionRule) DescribeJSONSchema(s *js.Schema) {
	if r.exclude {
		s.Not = &js.Schema{Enum: r.values}
		return
	}
	s.Enum = r.values
}

func equalValues(a, b any) bool {
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return da.Equal(db)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// ---------- Each ----------

type eachRule struct {
	rules []tarams.Rule
}

// Each applies rules to every non-nil element of a slice or array. Failing
// elements are reported as tarams.Items.
func Each(rules ...tarams.Rule) tarams.Rule { return eachRule{rules: rules} }

func (r eachRule) Prepare() error { return prepareAll(r.rules) }

func (r eachRule) Validate(rc tarams.RuleContext, v any) tarams.FieldError {
	items, ok := coerce.AsSlice(v)
	if !ok {
		return messages(i18n.T(i18n.CodeEachUnsupported, nil))
	}
	var failed tarams.Items
	for i, item := range items {
		if item == nil {
			continue
		}
		if ferr := tarams.ApplyRules(rc, item, r.rules); ferr != nil {
			failed = append(failed, tarams.ItemError{Index: i, Err: ferr})
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return failed
}

func (r eachRule) DescribeJSONSchema(s *js.Schema) {
	if s.Items == nil {
		return
	}
	for _, inner := range r.rules {
		if d, ok := inner.(js.Describer); ok {
			d.DescribeJSONSchema(s.Items)
		}
	}
}

func prepareAll(rs []tarams.Rule) error {
	for _, r := range rs {
		if p, ok := r.(tarams.Preparer); ok {
			if err := p.Prepare(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ---------- Func ----------

type funcRule struct {
	fn   any
	once sync.Once
	inv  *hook.Invocable
	err  error
}

// Func wraps a custom validator: a function taking (value), (value, record)
// or (field, value, record), or a tarams.Named reference. The validator
// passes by returning a nil error, a nil any, true or tarams.Ok; it fails by
// returning an error, false or tarams.Fail. Any other return is reported as
// "bad function".
func Func(fn any) tarams.Rule { return &funcRule{fn: fn} }

func (r *funcRule) Prepare() error {
	r.once.Do(func() {
		r.inv, r.err = tarams.ResolveHook(r.fn)
		if r.err == nil && r.inv == nil {
			r.err = fmt.Errorf("%w: nil validator", tarams.ErrBadHook)
		}
	})
	return r.err
}

func (r *funcRule) Validate(rc tarams.RuleContext, v any) tarams.FieldError {
	if err := r.Prepare(); err != nil {
		return messages(i18n.T(i18n.CodeBadFunction, nil))
	}
	oc := r.inv.Call(rc.Field, v, rc.Record)
	switch oc.Status {
	case hook.OK:
		if b, ok := oc.Value.(bool); ok && oc.HasValue && !b {
			return messages(i18n.T(i18n.CodeInvalid, nil))
		}
		return nil
	case hook.Failed:
		if len(oc.Messages) > 0 {
			return tarams.Messages(oc.Messages)
		}
		return messages(i18n.T(i18n.CodeInvalid, nil))
	}
	return messages(i18n.T(i18n.CodeBadFunction, nil))
}
