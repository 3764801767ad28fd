package tarams

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/bluzky/tarams/coerce"
	"github.com/bluzky/tarams/i18n"
	"github.com/bluzky/tarams/internal/hook"
)

type mode int

const (
	modeCast mode = iota
	modeValidate
	modeTransform
)

// pipeline carries per-call state. Presence is nil unless metadata was
// requested.
type pipeline struct {
	ctx      context.Context
	log      *slog.Logger
	mode     mode
	presence PresenceMap
}

func newPipeline(ctx context.Context, m mode) *pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	return &pipeline{ctx: ctx, log: loggerFrom(ctx), mode: m}
}

func msg(code string) Messages { return Messages{i18n.T(code, nil)} }

// record evaluates c against in in the pipeline's mode. Validation returns
// no output.
func (p *pipeline) record(c *Canonical, in record, ptr string) (map[string]any, Errors) {
	var out map[string]any
	if p.mode != modeValidate {
		out = make(map[string]any, len(c.fields))
	}
	var errs Errors
	for _, f := range c.fields {
		fptr := pointerJoin(ptr, f.outKey())
		var (
			v    any
			ferr FieldError
		)
		if p.mode == modeTransform {
			v, ferr = p.transformField(f, in, fptr)
		} else {
			v, ferr = p.castField(f, in, fptr)
		}
		if ferr != nil {
			if errs == nil {
				errs = Errors{}
			}
			errs[f.name] = ferr
			p.log.Debug("field failed", "field", fptr, "error", ferr)
			continue
		}
		if out != nil {
			out[f.outKey()] = v
		}
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// lookup reads the field's input key, applying the default when the key is
// absent. A present nil is kept as nil.
func (p *pipeline) lookup(f *field, in record, ptr string) any {
	v, ok := in.get(f.inKey())
	switch {
	case ok:
		p.presence.mark(ptr, PresenceSeen)
		v = deref(v)
		if v == nil {
			p.presence.mark(ptr, PresenceWasNull)
		}
	case f.hasDefault:
		p.presence.mark(ptr, PresenceDefaultApplied)
		return f.defaultValue()
	}
	return v
}

func (p *pipeline) castField(f *field, in record, ptr string) (any, FieldError) {
	v := p.lookup(f, in, ptr)
	var (
		val  any
		ferr FieldError
	)
	if f.cast != nil {
		val, ferr = p.callValue(f, f.cast, v, in.m)
	} else {
		val, ferr = p.coerce(f.typ, v, ptr)
	}
	if ferr != nil {
		return nil, f.override(ferr)
	}
	if ferr := p.check(f, val, in.m); ferr != nil {
		return nil, ferr
	}
	if f.into != nil && p.mode == modeCast {
		return p.callValue(f, f.into, val, in.m)
	}
	return val, nil
}

func (p *pipeline) transformField(f *field, in record, ptr string) (any, FieldError) {
	v, ferr := p.transformValue(f.typ, p.lookup(f, in, ptr), ptr)
	if ferr != nil {
		return nil, ferr
	}
	if f.into != nil {
		return p.callValue(f, f.into, v, in.m)
	}
	return v, nil
}

func (f *field) override(ferr FieldError) FieldError {
	if f.message != "" {
		return Messages{f.message}
	}
	return ferr
}

// callValue runs a value-producing hook (cast or into).
func (p *pipeline) callValue(f *field, inv *hook.Invocable, v any, raw map[string]any) (any, FieldError) {
	oc := inv.Call(f.name, v, raw)
	switch oc.Status {
	case hook.OK:
		if oc.Predicate {
			if oc.Value == false {
				return nil, msg(i18n.CodeInvalid)
			}
			return v, nil
		}
		if oc.HasValue {
			return oc.Value, nil
		}
		return v, nil
	case hook.Failed:
		if len(oc.Messages) > 0 {
			return nil, Messages(oc.Messages)
		}
		return nil, msg(i18n.CodeInvalid)
	case hook.Unrecognized:
		return nil, msg(i18n.CodeInvalid)
	}
	p.log.Debug("bad hook", "field", f.name, "hook", inv.Name, "arity", inv.Arity, "error", oc.Err)
	return nil, msg(i18n.CodeBadFunction)
}

// coerce converts v to t. Nil passes through for every type.
func (p *pipeline) coerce(t *typeSpec, v any, ptr string) (any, FieldError) {
	if v == nil {
		return nil, nil
	}
	switch t.tag {
	case tagScalar:
		out, err := coerce.To(t.kind, v)
		if err != nil {
			return nil, msg(i18n.CodeInvalid)
		}
		return out, nil
	case tagCustom:
		out, err := t.custom.Coerce(v)
		if err != nil {
			return nil, errorMessages(err)
		}
		return out, nil
	case tagArray:
		return p.coerceArray(t.elem, v, ptr)
	case tagNested:
		return p.coerceNested(t.nested, v, ptr)
	}
	return nil, msg(i18n.CodeInvalid)
}

// coerceArray stops at the first failing element when casting. Validation
// reports every failing element.
func (p *pipeline) coerceArray(elem *typeSpec, v any, ptr string) (any, FieldError) {
	items, ok := coerce.AsSlice(v)
	if !ok {
		return nil, msg(i18n.CodeInvalid)
	}
	out := make([]any, len(items))
	var failed Items
	for i, item := range items {
		iv, ferr := p.coerce(elem, deref(item), pointerIndex(ptr, i))
		if ferr != nil {
			failed = append(failed, ItemError{Index: i, Err: ferr})
			if p.mode == modeCast {
				break
			}
			continue
		}
		out[i] = iv
	}
	if failed != nil {
		return nil, failed
	}
	return out, nil
}

func (p *pipeline) coerceNested(c *Canonical, v any, ptr string) (any, FieldError) {
	if s, ok := v.(string); ok && s == "" {
		v = map[string]any{}
	}
	in, ok := asRecord(v)
	if !ok {
		// Not a record: report the first violation an empty record yields.
		q := *p
		q.presence = nil
		_, errs := q.record(c, record{m: map[string]any{}}, ptr)
		for _, f := range c.fields {
			if ferr, found := errs[f.name]; found {
				return nil, Errors{f.name: ferr}
			}
		}
		return nil, msg(i18n.CodeInvalid)
	}
	out, errs := p.record(c, in, ptr)
	if errs != nil {
		return nil, errs
	}
	if p.mode == modeValidate {
		return v, nil
	}
	return out, nil
}

func (p *pipeline) transformValue(t *typeSpec, v any, ptr string) (any, FieldError) {
	if v == nil {
		return nil, nil
	}
	switch t.tag {
	case tagNested:
		in, ok := asRecord(v)
		if !ok {
			return v, nil
		}
		out, errs := p.record(t.nested, in, ptr)
		if errs != nil {
			return nil, errs
		}
		return out, nil
	case tagArray:
		if t.elem.tag != tagNested && t.elem.tag != tagArray {
			return v, nil
		}
		items, ok := coerce.AsSlice(v)
		if !ok {
			return v, nil
		}
		out := make([]any, len(items))
		var failed Items
		for i, item := range items {
			iv, ferr := p.transformValue(t.elem, deref(item), pointerIndex(ptr, i))
			if ferr != nil {
				failed = append(failed, ItemError{Index: i, Err: ferr})
				continue
			}
			out[i] = iv
		}
		if failed != nil {
			return nil, failed
		}
		return out, nil
	}
	return v, nil
}

type messageLister interface {
	MessageList() []string
}

// errorMessages maps an error returned by a Coercible or hook to messages.
func errorMessages(err error) Messages {
	var ml messageLister
	switch {
	case errors.As(err, &ml) && len(ml.MessageList()) > 0:
		return Messages(ml.MessageList())
	case errors.Is(err, ErrInvalid):
		return msg(i18n.CodeInvalid)
	}
	return Messages{err.Error()}
}

// deref maps nil pointers, maps and slices to nil and unwraps pointers to
// scalars, as found in struct inputs.
func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() != reflect.Struct {
			return rv.Elem().Interface()
		}
	}
	return v
}
