package tarams

import (
	js "github.com/bluzky/tarams/jsonschema"
)

// JSONSchema projects schema into a JSON Schema describing accepted input.
// Properties are named by input key; static defaults and static required
// flags are exported, rules annotate their field when they implement
// jsonschema.Describer.
func JSONSchema(schema Schema) (*js.Schema, error) {
	c, err := Normalize(schema)
	if err != nil {
		return nil, err
	}
	s := c.JSONSchema()
	s.SchemaURI = js.Draft
	return s, nil
}

// JSONSchema projects a normalized schema into an object schema.
func (c *Canonical) JSONSchema() *js.Schema {
	s := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(c.fields))}
	for _, f := range c.fields {
		fs := typeSchema(f.typ)
		if f.hasDefault {
			if _, producer := f.def.(func() any); !producer {
				fs.Default = f.def
			}
		}
		for _, r := range f.rules {
			if d, ok := r.(js.Describer); ok {
				d.DescribeJSONSchema(fs)
			}
		}
		key := f.inKey()
		s.Properties[key] = fs
		if f.required && f.requiredFn == nil {
			s.Required = append(s.Required, key)
		}
	}
	return s
}

func typeSchema(t *typeSpec) *js.Schema {
	switch t.tag {
	case tagArray:
		return &js.Schema{Type: "array", Items: typeSchema(t.elem)}
	case tagNested:
		return t.nested.JSONSchema()
	case tagCustom:
		s := &js.Schema{}
		if d, ok := t.custom.(js.Describer); ok {
			d.DescribeJSONSchema(s)
		}
		return s
	}
	switch t.kind {
	case Boolean:
		return &js.Schema{Type: "boolean"}
	case String:
		return &js.Schema{Type: "string"}
	case Integer:
		return &js.Schema{Type: "integer"}
	case Float, Number:
		return &js.Schema{Type: "number"}
	case Decimal:
		return &js.Schema{Format: "decimal"}
	case Date:
		return &js.Schema{Type: "string", Format: "date"}
	case Time:
		return &js.Schema{Type: "string", Format: "time"}
	case DateTime:
		return &js.Schema{Type: "string", Format: "date-time"}
	case NaiveDateTime:
		return &js.Schema{Type: "string"}
	case Map:
		return &js.Schema{Type: "object", AdditionalProperties: true}
	}
	return &js.Schema{}
}
