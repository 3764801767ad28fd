package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/bluzky/tarams/i18n"
)

// Op defines comparison operators for bounds and If(...).Then(...).
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// Bound is one comparison applied by Number and Length.
type Bound struct {
	Op    Op
	Value any
}

// Equal requires the checked quantity to equal v.
func Equal(v any) Bound { return Bound{Op: OpEq, Value: v} }

// Min requires the checked quantity to be >= v.
func Min(v any) Bound { return Bound{Op: OpGe, Value: v} }

// Gte is an alias of Min.
func Gte(v any) Bound { return Min(v) }

// Gt requires the checked quantity to be > v.
func Gt(v any) Bound { return Bound{Op: OpGt, Value: v} }

// Max requires the checked quantity to be <= v.
func Max(v any) Bound { return Bound{Op: OpLe, Value: v} }

// Lte is an alias of Max.
func Lte(v any) Bound { return Max(v) }

// Lt requires the checked quantity to be < v.
func Lt(v any) Bound { return Bound{Op: OpLt, Value: v} }

type resolvedBound struct {
	Bound
	dec decimal.Decimal
}

func resolveBounds(family string, bs []Bound, integral bool) ([]resolvedBound, error) {
	out := make([]resolvedBound, 0, len(bs))
	for _, b := range bs {
		if b.Op == OpNe {
			return nil, fmt.Errorf("rules: %s does not support %s bounds", family, b.Op)
		}
		d, ok := toDecimal(b.Value)
		if !ok {
			return nil, fmt.Errorf("rules: %s bound %v is not a number", family, b.Value)
		}
		if integral && !d.IsInteger() {
			return nil, fmt.Errorf("rules: %s bound %v is not an integer", family, b.Value)
		}
		out = append(out, resolvedBound{Bound: b, dec: d})
	}
	return out, nil
}

// holds reports whether x satisfies the bound.
func (b resolvedBound) holds(x decimal.Decimal) bool {
	return compareOp(x.Cmp(b.dec), b.Op)
}

func compareOp(cmp int, op Op) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

func (b resolvedBound) message(codes map[Op]string) string {
	return i18n.T(codes[b.Op], i18n.Value(fmt.Sprint(b.Value)))
}

var (
	_numberCodes = map[Op]string{
		OpEq: i18n.CodeNumberEqual,
		OpGe: i18n.CodeNumberGte,
		OpGt: i18n.CodeNumberGt,
		OpLe: i18n.CodeNumberLte,
		OpLt: i18n.CodeNumberLt,
	}
	_lengthCodes = map[Op]string{
		OpEq: i18n.CodeLengthEqual,
		OpGe: i18n.CodeLengthGte,
		OpGt: i18n.CodeLengthGt,
		OpLe: i18n.CodeLengthLte,
		OpLt: i18n.CodeLengthLt,
	}
)

// toDecimal converts numeric values (not numeric strings) to a decimal.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case *decimal.Decimal:
		if t == nil {
			return decimal.Decimal{}, false
		}
		return *t, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}
