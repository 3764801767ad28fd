package schemafile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/schemafile"
)

const orderDoc = `
fields:
  id:
    type: integer
    required: true
    as: order_id
  email:
    type: string
    validations:
      - format: "@"
  status:
    type: string
    default: pending
    validations:
      - in: [pending, paid]
  tags: [string]
  address:
    fields:
      city: {type: string, required: true}
  items:
    type: array
    of:
      fields:
        sku: {type: string, required: true}
        qty:
          type: integer
          validations:
            - number: {gt: 0, max: 99}
    validations:
      - length: {min: 1}
      - unique_by: sku
`

func TestParse_Cast(t *testing.T) {
	schema, err := schemafile.Parse([]byte(orderDoc))
	require.NoError(t, err)

	out, err := tarams.Cast(context.Background(), map[string]any{
		"id":      "12",
		"email":   "a@b",
		"tags":    []any{"x"},
		"address": map[string]any{"city": "Oslo"},
		"items":   []any{map[string]any{"sku": "A", "qty": "2"}},
	}, schema)
	require.NoError(t, err)
	assert.Equal(t, 12, out["order_id"])
	assert.Equal(t, "pending", out["status"])
	assert.Equal(t, []any{"x"}, out["tags"])
	assert.Equal(t, map[string]any{"city": "Oslo"}, out["address"])
	assert.Equal(t, []any{map[string]any{"sku": "A", "qty": 2}}, out["items"])
}

func TestParse_FieldErrors(t *testing.T) {
	schema, err := schemafile.Parse([]byte(orderDoc))
	require.NoError(t, err)

	err = tarams.Validate(context.Background(), map[string]any{
		"email":  "nope",
		"status": "shipped",
		"items": []any{
			map[string]any{"sku": "A", "qty": 0},
			map[string]any{"sku": "A", "qty": 1},
		},
	}, schema)
	errs, ok := tarams.AsErrors(err)
	require.True(t, ok, "got %v", err)
	flat := errs.Flatten()
	assert.Equal(t, []string{"is required"}, flat["id"])
	assert.Equal(t, []string{"does not match format"}, flat["email"])
	assert.Equal(t, []string{"not be in the inclusion list"}, flat["status"])
	assert.Equal(t, []string{"must be greater than 0"}, flat["items[0].qty"])
}

func TestParse_NamedHooks(t *testing.T) {
	_ = tarams.RegisterHook("schemafile-test-trim", func(v any) (any, error) {
		return strings.TrimSpace(v.(string)), nil
	})
	schema, err := schemafile.Parse([]byte(`
fields:
  name:
    type: string
    into: schemafile-test-trim
    message: needs a name
    required: true
`))
	require.NoError(t, err)

	out, err := tarams.Cast(context.Background(), map[string]any{"name": "  Ann "}, schema)
	require.NoError(t, err)
	assert.Equal(t, "Ann", out["name"])

	_, err = tarams.Cast(context.Background(), map[string]any{}, schema)
	errs, ok := tarams.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, tarams.Errors{"name": tarams.Messages{"needs a name"}}, errs)
}

func TestParse_AggregatesProblems(t *testing.T) {
	_, err := schemafile.Parse([]byte(`
fields:
  a: nosuchtype
  b:
    type: integer
    validations:
      - number: {around: 3}
      - frobnicate: true
  c:
    type: array
  d: [string, integer]
`))
	require.Error(t, err)
	problems := multierr.Errors(err)
	require.Len(t, problems, 5)
	joined := err.Error()
	for _, want := range []string{`unknown type "nosuchtype"`, `unknown bound "around"`, `unknown validation "frobnicate"`, "array type requires of", "exactly one element type"} {
		assert.Contains(t, joined, want)
	}
	assert.Contains(t, problems[0].Error(), "line 3")
}

func TestParse_BadDocument(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"no fields": "other: 1",
		"not yaml":  "fields: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  n: integer\n"), 0o600))
	schema, err := schemafile.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tarams.Kind("integer"), schema["n"])

	_, err = schemafile.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
