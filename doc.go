// Package tarams casts, validates and transforms loosely typed input records
// (decoded JSON, form parameters, query strings) against a declarative
// schema.
//
// A Schema maps field names to declarations. Declarations are either a type
// (shorthand) or a Field carrying defaults, requiredness, key renaming,
// hooks and validation rules:
//
//	schema := tarams.Schema{
//		"name":  tarams.Field{Type: tarams.String, Required: true},
//		"email": tarams.Field{Type: tarams.String, Validations: []tarams.Rule{rules.Pattern(`@`)}},
//		"tags":  tarams.ArrayOf(tarams.String),
//		"address": tarams.Schema{
//			"city": tarams.Field{Type: tarams.String, Required: true},
//		},
//	}
//	out, err := tarams.Cast(ctx, input, schema)
//	if errs, ok := tarams.AsErrors(err); ok {
//		// errs["address"] is tarams.Errors{"city": tarams.Messages{"is required"}}
//	}
//
// Design policy:
//   - Keep only public APIs in the root package; put helpers under internal/.
//   - Built-in rule families live in rules/, extra scalar types in types/,
//     YAML schema documents in schemafile/ and the CLI under cmd/tarams.
//   - Fields are evaluated in ascending name order, so error reporting and
//     hook invocation order are deterministic.
//   - Prefer black-box testing against public APIs.
package tarams
