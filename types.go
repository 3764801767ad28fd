package tarams

import (
	"context"

	"github.com/bluzky/tarams/coerce"
	"github.com/bluzky/tarams/internal/hook"
)

// Kind is a scalar type tag. Kinds outside the built-in set name a custom
// type registered with RegisterType.
type Kind = coerce.Kind

// Built-in kinds.
const (
	Boolean       = coerce.Boolean
	String        = coerce.String
	Integer       = coerce.Integer
	Float         = coerce.Float
	Number        = coerce.Number
	Date          = coerce.Date
	Time          = coerce.Time
	DateTime      = coerce.DateTime
	NaiveDateTime = coerce.NaiveDateTime
	Decimal       = coerce.Decimal
	Map           = coerce.Map
	Any           = coerce.Any
)

// Coercible is implemented by user-defined types that coerce their own values.
type Coercible = coerce.Coercible

// Schema maps field names to declarations. A declaration is either a type
// (shorthand: Kind, Array, nested Schema, Coercible) or a Field.
type Schema map[string]any

// Array declares a sequence whose elements are of type Of (any declaration
// accepted as a field type, including a nested Schema).
type Array struct {
	Of any
}

// ArrayOf is shorthand for Array{Of: elem}.
func ArrayOf(elem any) Array { return Array{Of: elem} }

// Field is the canonical declaration of a schema field.
type Field struct {
	Type any // Required: Kind, Array, Schema, Coercible.

	// Default applies when the input key is absent. A func() any is invoked
	// on every use; any other value is used as-is.
	Default any
	// Required is a bool or a decision hook called with (value, record).
	Required any

	From string // input key (defaults to the field name)
	As   string // output key (defaults to the field name)

	// Cast replaces the built-in coercion and Into transforms the validated
	// value. Both produce the field's value: a returned value or Ok(v)
	// replaces it; a nil error, a nil any or Ok() keeps it; a hook declared
	// as returning bool keeps it on true and fails with "is invalid" on
	// false; an error or Fail fails the field.
	Cast        any
	Validations []Rule
	Into        any

	// Message replaces coercion and validation errors of this field.
	Message string
}

// Named refers to a hook registered with RegisterHook. It may be used
// wherever a hook function is accepted.
type Named string

// Result is the loose return value for hooks declared as returning Result
// or any.
type Result = hook.Result

// Ok wraps a successful hook value.
func Ok(v any) Result { return hook.Ok(v) }

// Fail reports a hook failure with optional messages. Without messages the
// field error is "is invalid".
func Fail(msgs ...string) Result { return hook.Fail(msgs...) }

// Rule is a single validation rule evaluated against a coerced, non-nil
// value. Package rules provides the built-in rule families.
type Rule interface {
	Validate(rc RuleContext, v any) FieldError
}

// Preparer is implemented by rules that resolve resources (such as named
// hooks) before use. Normalize calls Prepare and reports failures as schema
// errors.
type Preparer interface {
	Prepare() error
}

// RuleContext carries the field being validated and the raw input record.
type RuleContext struct {
	Ctx    context.Context
	Field  string
	Record map[string]any
}
