package tarams

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bluzky/tarams/coerce"
)

// FieldError is the error value of a single field. Its shape mirrors the
// value shape: Messages for scalars, Errors for nested records, Items for
// sequences.
type FieldError interface {
	error
	fieldError()
}

// Messages is an ordered, non-empty list of human-readable messages.
type Messages []string

func (Messages) fieldError() {}

func (m Messages) Error() string { return strings.Join(m, ", ") }

// MessageList lets hooks return Messages as an error carrying several
// messages.
func (m Messages) MessageList() []string { return m }

// Errors maps field names to their errors. It is returned by Cast, Validate
// and Transform when at least one field failed.
type Errors map[string]FieldError

func (Errors) fieldError() {}

// Error summarizes the first few failures in path order.
func (e Errors) Error() string {
	flat := e.Flatten()
	if len(flat) == 0 {
		return ""
	}
	paths := lo.Keys(flat)
	slices.Sort(paths)
	const maxShown = 3
	b := &strings.Builder{}
	for i, p := range paths {
		if i == maxShown {
			fmt.Fprintf(b, "; ... (total %d)", len(paths))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", p, strings.Join(flat[p], ", "))
	}
	return b.String()
}

// Flatten renders the error tree as dotted paths ("items[0].sku") mapped to
// their messages.
func (e Errors) Flatten() map[string][]string {
	out := map[string][]string{}
	flattenInto(out, "", e)
	return out
}

func flattenInto(out map[string][]string, prefix string, fe FieldError) {
	switch t := fe.(type) {
	case Messages:
		out[prefix] = append(out[prefix], t...)
	case Errors:
		for k, v := range t {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			flattenInto(out, p, v)
		}
	case Items:
		for _, it := range t {
			flattenInto(out, prefix+"["+strconv.Itoa(it.Index)+"]", it.Err)
		}
	}
}

// ItemError is the error of one sequence element.
type ItemError struct {
	Index int        `json:"index"`
	Err   FieldError `json:"errors"`
}

// Items lists failing sequence elements in index order. Array coercion stops
// at the first failing element, so a cast error holds a single entry.
type Items []ItemError

func (Items) fieldError() {}

func (it Items) Error() string {
	parts := make([]string, 0, len(it))
	for _, e := range it {
		parts = append(parts, fmt.Sprintf("[%d] %s", e.Index, e.Err.Error()))
	}
	return strings.Join(parts, "; ")
}

// AsErrors extracts Errors from an error using errors.As internally.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var e Errors
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// isEmpty reports whether fe carries no failure (including typed nils).
func isEmpty(fe FieldError) bool {
	switch t := fe.(type) {
	case nil:
		return true
	case Messages:
		return len(t) == 0
	case Errors:
		return len(t) == 0
	case Items:
		return len(t) == 0
	}
	return false
}

// Schema-definition errors. They signal a programming error in the schema
// and are never reported through Errors.
var (
	ErrMissingType  = errors.New("missing type")
	ErrUnknownType  = errors.New("unknown type")
	ErrBadHook      = errors.New("bad hook")
	ErrBadRequired  = errors.New("required must be a bool or a hook")
	ErrInvalidInput = errors.New("tarams: input is not a record")
	ErrDuplicate    = errors.New("tarams: already registered")
)

// ErrInvalid is the generic failure signal hooks and Coercible types may
// return; it is reported as "is invalid".
var ErrInvalid = coerce.ErrInvalid

// SchemaError reports a malformed schema declaration.
type SchemaError struct {
	Path string // dotted field path, "[]" marks array elements
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("tarams: schema field %q: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
