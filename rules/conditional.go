package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/coerce"
	"github.com/bluzky/tarams/i18n"
)

// Conditional composes conditional execution of rules based on other values
// of the raw input record.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates a record path against a value
// using an operator (OpEq, OpNe, OpLt, OpLe, OpGt, OpGe). The path is a
// JSON Pointer like "/status" or "/address/country"; a bare key is accepted
// too.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: strings.TrimPrefix(path, "/"), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...tarams.Rule) tarams.Rule {
	return conditionalRule{cond: c, rules: rules}
}

type conditionalRule struct {
	cond  Conditional
	rules []tarams.Rule
}

func (r conditionalRule) Prepare() error { return prepareAll(r.rules) }

func (r conditionalRule) Validate(rc tarams.RuleContext, v any) tarams.FieldError {
	if !r.cond.eval(rc.Record) {
		return nil
	}
	return tarams.ApplyRules(rc, v, r.rules)
}

func (c Conditional) eval(record map[string]any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(record) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(record) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAtPath(record, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// valueAtPath navigates maps, structs and sequences by "/"-separated
// segments. Struct fields are matched with tarams.ResolveStructKey.
func valueAtPath(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range strings.Split(rel, "/") {
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if sf.IsExported() && tarams.ResolveStructKey(sf) == seg {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

func compare(cur any, op Op, want any) bool {
	if a, ok := toDecimal(cur); ok {
		if b, ok := toDecimal(want); ok {
			return compareOp(a.Cmp(b), op)
		}
	}
	switch op {
	case OpEq:
		return reflect.DeepEqual(cur, want)
	case OpNe:
		return !reflect.DeepEqual(cur, want)
	}
	if a, ok := cur.(string); ok {
		if b, ok := want.(string); ok {
			return compareOp(strings.Compare(a, b), op)
		}
	}
	return false
}

// ---------- Rule combinators ----------

// All runs every rule and merges failures like a field's rule list.
func All(rules ...tarams.Rule) tarams.Rule { return allRule(rules) }

type allRule []tarams.Rule

func (r allRule) Prepare() error { return prepareAll(r) }

func (r allRule) Validate(rc tarams.RuleContext, v any) tarams.FieldError {
	return tarams.ApplyRules(rc, v, r)
}

// Any succeeds if any rule passes. When all fail it returns the failure of
// the branch with the fewest messages.
func Any(rules ...tarams.Rule) tarams.Rule { return anyRule(rules) }

type anyRule []tarams.Rule

func (r anyRule) Prepare() error { return prepareAll(r) }

func (r anyRule) Validate(rc tarams.RuleContext, v any) tarams.FieldError {
	var best tarams.FieldError
	bestN := -1
	for _, rule := range r {
		ferr := tarams.ApplyRules(rc, v, []tarams.Rule{rule})
		if ferr == nil {
			return nil
		}
		n := 1
		if m, ok := ferr.(tarams.Messages); ok {
			n = len(m)
		}
		if bestN < 0 || n < bestN {
			best, bestN = ferr, n
		}
	}
	return best
}

// ---------- Collections ----------

// UniqueBy ensures elements of a sequence have unique values at keyPath
// ("sku" or "/sku" inside each element). An empty keyPath compares the
// elements themselves. Duplicates are reported per index.
// Note: keys compare by their printed form, so align the key to one type.
func UniqueBy(keyPath string) tarams.Rule { return uniqueRule{key: strings.TrimPrefix(keyPath, "/")} }

type uniqueRule struct{ key string }

func (r uniqueRule) Validate(_ tarams.RuleContext, v any) tarams.FieldError {
	items, ok := coerce.AsSlice(v)
	if !ok {
		return messages(i18n.T(i18n.CodeEachUnsupported, nil))
	}
	seen := map[string]int{}
	var dup tarams.Items
	for i, item := range items {
		kv, ok := valueAtPath(item, r.key)
		if !ok || kv == nil {
			continue
		}
		key := fmt.Sprint(kv)
		if _, found := seen[key]; found {
			dup = append(dup, tarams.ItemError{Index: i, Err: tarams.Messages{i18n.T(i18n.CodeDuplicate, nil)}})
			continue
		}
		seen[key] = i
	}
	if len(dup) == 0 {
		return nil
	}
	return dup
}
