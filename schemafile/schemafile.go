// Package schemafile loads schemas from YAML documents:
//
//	fields:
//	  name: {type: string, required: true, validations: [{length: {min: 1}}]}
//	  tags: [string]
//	  age:
//	    type: integer
//	    default: 18
//	    validations:
//	      - number: {min: 0, lt: 150}
//	  address:
//	    fields:
//	      city: {type: string, required: true}
//	  items:
//	    type: array
//	    of: {fields: {sku: string}}
//
// Hooks (cast, into, required, func validations) refer to functions
// registered with tarams.RegisterHook. All problems of a document are
// reported together.
package schemafile

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/rules"
)

// Load reads a schema document from r.
func Load(r io.Reader) (tarams.Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a schema document from path.
func LoadFile(path string) (tarams.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema document. The returned error combines every
// problem found; use multierr.Errors to list them.
func Parse(data []byte) (tarams.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("schemafile: empty document")
	}
	doc := root.Content[0]
	fields := lookup(doc, "fields")
	if doc.Kind != yaml.MappingNode || fields == nil {
		return nil, fmt.Errorf("schemafile: line %d: document must be a mapping with a fields key", doc.Line)
	}
	l := &loader{}
	s := l.schema("", fields)
	if l.err != nil {
		return nil, l.err
	}
	return s, nil
}

type loader struct {
	err error
}

func (l *loader) errorf(n *yaml.Node, path, format string, args ...any) {
	l.err = multierr.Append(l.err, fmt.Errorf("line %d: %s: %s", n.Line, path, fmt.Sprintf(format, args...)))
}

func (l *loader) schema(path string, n *yaml.Node) tarams.Schema {
	if n.Kind != yaml.MappingNode {
		l.errorf(n, path, "fields must be a mapping")
		return nil
	}
	out := make(tarams.Schema, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		out[name] = l.field(join(path, name), n.Content[i+1])
	}
	return out
}

// fieldDecl is the long form of a field.
type fieldDecl struct {
	Type        string      `yaml:"type"`
	Of          yaml.Node   `yaml:"of"`
	Fields      yaml.Node   `yaml:"fields"`
	Required    yaml.Node   `yaml:"required"`
	Default     any         `yaml:"default"`
	From        string      `yaml:"from"`
	As          string      `yaml:"as"`
	Message     string      `yaml:"message"`
	Cast        string      `yaml:"cast"`
	Into        string      `yaml:"into"`
	Validations []yaml.Node `yaml:"validations"`
}

func (l *loader) field(path string, n *yaml.Node) any {
	if n.Kind != yaml.MappingNode {
		return l.typeOf(path, n)
	}
	var decl fieldDecl
	if err := n.Decode(&decl); err != nil {
		l.errorf(n, path, "%v", err)
		return nil
	}
	f := tarams.Field{
		Default: decl.Default,
		From:    decl.From,
		As:      decl.As,
		Message: decl.Message,
	}
	switch {
	case decl.Fields.Kind != 0 && (decl.Type == "" || decl.Type == "object"):
		f.Type = l.schema(path, &decl.Fields)
	case decl.Type == "array":
		if decl.Of.Kind == 0 {
			l.errorf(n, path, "array type requires of")
			return nil
		}
		f.Type = tarams.ArrayOf(l.typeOf(path+"[]", &decl.Of))
	case decl.Type == "":
		l.errorf(n, path, "missing type")
		return nil
	default:
		f.Type = l.kind(n, path, decl.Type)
	}
	switch req := &decl.Required; {
	case req.Kind == 0:
	case req.Kind != yaml.ScalarNode:
		l.errorf(req, path, "required must be a bool or a hook name")
	default:
		if b, err := strconv.ParseBool(req.Value); err == nil {
			f.Required = b
		} else {
			f.Required = tarams.Named(req.Value)
		}
	}
	if decl.Cast != "" {
		f.Cast = tarams.Named(decl.Cast)
	}
	if decl.Into != "" {
		f.Into = tarams.Named(decl.Into)
	}
	for i := range decl.Validations {
		if r := l.rule(path, &decl.Validations[i]); r != nil {
			f.Validations = append(f.Validations, r)
		}
	}
	return f
}

// typeOf resolves a type position: a type name, [elem] or {fields: ...}.
func (l *loader) typeOf(path string, n *yaml.Node) any {
	switch n.Kind {
	case yaml.ScalarNode:
		return l.kind(n, path, n.Value)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			l.errorf(n, path, "array shorthand takes exactly one element type")
			return nil
		}
		return tarams.ArrayOf(l.typeOf(path+"[]", n.Content[0]))
	case yaml.MappingNode:
		if fields := lookup(n, "fields"); fields != nil && lookup(n, "type") == nil {
			return l.schema(path, fields)
		}
		f, _ := l.field(path, n).(tarams.Field)
		return f.Type
	}
	l.errorf(n, path, "unsupported type declaration")
	return nil
}

func (l *loader) kind(n *yaml.Node, path, name string) any {
	k := tarams.Kind(name)
	if !k.Builtin() && !slices.Contains(tarams.RegisteredTypes(), name) {
		l.errorf(n, path, "unknown type %q", name)
		return nil
	}
	return k
}

func (l *loader) rule(path string, n *yaml.Node) tarams.Rule {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		l.errorf(n, path, "validation must be a single-key mapping")
		return nil
	}
	name, arg := n.Content[0].Value, n.Content[1]
	switch name {
	case "number":
		if bs := l.bounds(path, arg, false); bs != nil {
			return rules.Number(bs...)
		}
	case "length":
		if bs := l.bounds(path, arg, true); bs != nil {
			return rules.Length(bs...)
		}
	case "format", "pattern":
		re, err := regexp.Compile(arg.Value)
		if err != nil || arg.Kind != yaml.ScalarNode {
			l.errorf(arg, path, "invalid format %q", arg.Value)
			return nil
		}
		return rules.Format(re)
	case "in", "not_in":
		var values []any
		if err := arg.Decode(&values); err != nil {
			l.errorf(arg, path, "%s requires a list", name)
			return nil
		}
		if name == "in" {
			return rules.In(values...)
		}
		return rules.NotIn(values...)
	case "func":
		if arg.Kind != yaml.ScalarNode || arg.Value == "" {
			l.errorf(arg, path, "func requires a hook name")
			return nil
		}
		return rules.Func(tarams.Named(arg.Value))
	case "unique_by":
		return rules.UniqueBy(arg.Value)
	case "each":
		if arg.Kind != yaml.SequenceNode {
			l.errorf(arg, path, "each requires a list of validations")
			return nil
		}
		var inner []tarams.Rule
		for _, item := range arg.Content {
			if r := l.rule(path+"[]", item); r != nil {
				inner = append(inner, r)
			}
		}
		return rules.Each(inner...)
	default:
		l.errorf(n, path, "unknown validation %q", name)
	}
	return nil
}

var _boundOps = map[string]func(any) rules.Bound{
	"equal_to":     rules.Equal,
	"eq":           rules.Equal,
	"min":          rules.Min,
	"gte":          rules.Gte,
	"greater_than": rules.Gt,
	"gt":           rules.Gt,
	"max":          rules.Max,
	"lte":          rules.Lte,
	"less_than":    rules.Lt,
	"lt":           rules.Lt,
}

func (l *loader) bounds(path string, n *yaml.Node, integral bool) []rules.Bound {
	if n.Kind != yaml.MappingNode {
		l.errorf(n, path, "bounds must be a mapping")
		return nil
	}
	var out []rules.Bound
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		op, ok := _boundOps[key]
		if !ok {
			l.errorf(n.Content[i], path, "unknown bound %q", key)
			continue
		}
		var num any
		if integral {
			v, err := strconv.Atoi(val.Value)
			if err != nil {
				l.errorf(val, path, "%s must be an integer", key)
				continue
			}
			num = v
		} else if v, err := strconv.Atoi(val.Value); err == nil {
			num = v
		} else if f, err := strconv.ParseFloat(val.Value, 64); err == nil {
			num = f
		} else {
			l.errorf(val, path, "%s must be a number", key)
			continue
		}
		out = append(out, op(num))
	}
	return out
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
