package tarams

import (
	"github.com/bluzky/tarams/i18n"
	"github.com/bluzky/tarams/internal/hook"
)

// check decides requiredness and runs the field's rules on a coerced value.
func (p *pipeline) check(f *field, val any, raw map[string]any) FieldError {
	required := f.required
	if f.requiredFn != nil {
		oc := f.requiredFn.Call(f.name, val, raw)
		switch oc.Status {
		case hook.OK:
			if oc.HasValue {
				b, ok := oc.Value.(bool)
				if !ok {
					return msg(i18n.CodeBadFunction)
				}
				required = b
			}
		case hook.Failed:
			if len(oc.Messages) > 0 {
				return Messages(oc.Messages)
			}
			return msg(i18n.CodeInvalid)
		default:
			p.log.Debug("bad required hook", "field", f.name, "hook", f.requiredFn.Name, "error", oc.Err)
			return msg(i18n.CodeBadFunction)
		}
	}
	if val == nil {
		if required {
			return f.override(msg(i18n.CodeRequired))
		}
		return nil
	}
	if len(f.rules) == 0 {
		return nil
	}
	rc := RuleContext{Ctx: p.ctx, Field: f.name, Record: raw}
	if ferr := ApplyRules(rc, val, f.rules); ferr != nil {
		return f.override(ferr)
	}
	return nil
}

// ApplyRules runs every rule against v and merges the failures. Flat
// messages are concatenated in rule order. A single structured failure with
// no flat messages is returned unchanged; otherwise structured failures are
// flattened into the message list.
func ApplyRules(rc RuleContext, v any, rules []Rule) FieldError {
	var (
		flat       Messages
		structured []FieldError
	)
	for _, r := range rules {
		ferr := r.Validate(rc, v)
		if isEmpty(ferr) {
			continue
		}
		if m, ok := ferr.(Messages); ok {
			flat = append(flat, m...)
			continue
		}
		structured = append(structured, ferr)
	}
	switch {
	case len(structured) == 0 && len(flat) == 0:
		return nil
	case len(structured) == 0:
		return flat
	case len(structured) == 1 && len(flat) == 0:
		return structured[0]
	}
	for _, s := range structured {
		flat = append(flat, s.Error())
	}
	return flat
}
