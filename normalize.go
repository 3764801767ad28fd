package tarams

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/bluzky/tarams/internal/hook"
)

type typeTag int

const (
	tagScalar typeTag = iota
	tagCustom
	tagArray
	tagNested
)

// typeSpec is a resolved field type.
type typeSpec struct {
	tag    typeTag
	kind   Kind       // tagScalar; also the registered name for tagCustom
	custom Coercible  // tagCustom
	elem   *typeSpec  // tagArray
	nested *Canonical // tagNested
}

// field is the canonical form of one declaration.
type field struct {
	name       string
	typ        *typeSpec
	def        any
	hasDefault bool
	required   bool
	requiredFn *hook.Invocable
	from, as   string
	cast, into *hook.Invocable
	rules      []Rule
	message    string
}

func (f *field) inKey() string {
	if f.from != "" {
		return f.from
	}
	return f.name
}

func (f *field) outKey() string {
	if f.as != "" {
		return f.as
	}
	return f.name
}

// defaultValue produces the default for one use. Producer functions run on
// every call so values are never shared between results.
func (f *field) defaultValue() any {
	if fn, ok := f.def.(func() any); ok {
		return fn()
	}
	return f.def
}

// Canonical is a normalized schema. It is immutable and safe for concurrent
// use, so callers casting many records against one schema may normalize once.
type Canonical struct {
	fields []*field // ordered by field name
}

// Fields returns the field names in evaluation order.
func (c *Canonical) Fields() []string {
	out := make([]string, len(c.fields))
	for i, f := range c.fields {
		out[i] = f.name
	}
	return out
}

// Normalize expands shorthand declarations, resolves named hooks and
// registered types, and checks hook signatures. Malformed declarations are
// reported as *SchemaError.
func Normalize(schema Schema) (*Canonical, error) {
	return normalizeAt("", schema)
}

// MustNormalize is like Normalize but panics on a schema error.
func MustNormalize(schema Schema) *Canonical {
	c, err := Normalize(schema)
	if err != nil {
		panic(err)
	}
	return c
}

func normalizeAt(prefix string, schema map[string]any) (*Canonical, error) {
	names := lo.Keys(schema)
	slices.Sort(names)

	c := &Canonical{fields: make([]*field, 0, len(names))}
	for _, name := range names {
		path := joinPath(prefix, name)
		f, err := normalizeField(path, name, schema[name])
		if err != nil {
			return nil, err
		}
		c.fields = append(c.fields, f)
	}
	return c, nil
}

func normalizeField(path, name string, decl any) (*field, error) {
	var d Field
	switch t := decl.(type) {
	case Field:
		d = t
	case *Field:
		if t == nil {
			return nil, &SchemaError{Path: path, Err: ErrMissingType}
		}
		d = *t
	default:
		d = Field{Type: decl}
	}

	typ, err := resolveType(path, d.Type)
	if err != nil {
		return nil, err
	}
	f := &field{
		name:       name,
		typ:        typ,
		def:        d.Default,
		hasDefault: d.Default != nil,
		from:       d.From,
		as:         d.As,
		rules:      d.Validations,
		message:    d.Message,
	}

	switch r := d.Required.(type) {
	case nil:
	case bool:
		f.required = r
	default:
		inv, err := ResolveHook(r)
		if err != nil {
			return nil, &SchemaError{Path: path, Err: fmt.Errorf("%w: %v", ErrBadRequired, err)}
		}
		f.requiredFn = inv
	}

	if f.cast, err = ResolveHook(d.Cast); err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	if f.into, err = ResolveHook(d.Into); err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	for _, r := range d.Validations {
		if r == nil {
			return nil, &SchemaError{Path: path, Err: fmt.Errorf("nil validation rule")}
		}
		if p, ok := r.(Preparer); ok {
			if err := p.Prepare(); err != nil {
				return nil, &SchemaError{Path: path, Err: err}
			}
		}
	}
	return f, nil
}

func resolveType(path string, t any) (*typeSpec, error) {
	switch v := t.(type) {
	case nil:
		return nil, &SchemaError{Path: path, Err: ErrMissingType}
	case Kind:
		return resolveKind(path, v)
	case string:
		return resolveKind(path, Kind(v))
	case Array:
		elem, err := resolveType(path+"[]", v.Of)
		if err != nil {
			return nil, err
		}
		return &typeSpec{tag: tagArray, elem: elem}, nil
	case *Array:
		if v == nil {
			return nil, &SchemaError{Path: path, Err: ErrMissingType}
		}
		return resolveType(path, *v)
	case Schema:
		nested, err := normalizeAt(path, v)
		if err != nil {
			return nil, err
		}
		return &typeSpec{tag: tagNested, nested: nested}, nil
	case map[string]any:
		return resolveType(path, Schema(v))
	case *Canonical:
		return &typeSpec{tag: tagNested, nested: v}, nil
	case Coercible:
		return &typeSpec{tag: tagCustom, custom: v}, nil
	}
	return nil, &SchemaError{Path: path, Err: fmt.Errorf("%w: %T", ErrUnknownType, t)}
}

func resolveKind(path string, k Kind) (*typeSpec, error) {
	if k == "" {
		return nil, &SchemaError{Path: path, Err: ErrMissingType}
	}
	if k.Builtin() {
		return &typeSpec{tag: tagScalar, kind: k}, nil
	}
	if c, ok := lookupType(string(k)); ok {
		return &typeSpec{tag: tagCustom, kind: k, custom: c}, nil
	}
	return nil, &SchemaError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownType, string(k))}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
