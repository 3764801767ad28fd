package tarams

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Cast coerces, validates and transforms input against schema. On success
// it returns the output record keyed by each field's output name. When any
// field fails it returns Errors keyed by field name. A malformed schema is
// reported as *SchemaError.
//
// input may be a map or a struct (keys resolved with ResolveStructKey).
func Cast(ctx context.Context, input any, schema Schema) (map[string]any, error) {
	c, err := normalizeFor(ctx, schema)
	if err != nil {
		return nil, err
	}
	return c.Cast(ctx, input)
}

// MustCast is like Cast but panics on any error, including field failures.
// Use it where the input is already known to be valid.
func MustCast(ctx context.Context, input any, schema Schema) map[string]any {
	out, err := Cast(ctx, input, schema)
	if err != nil {
		panic(err)
	}
	return out
}

// Validate checks input against schema without producing output: types are
// checked by coercion, then required and rule checks run, recursing into
// nested records. It returns nil or Errors.
func Validate(ctx context.Context, input any, schema Schema) error {
	c, err := normalizeFor(ctx, schema)
	if err != nil {
		return err
	}
	return c.Validate(ctx, input)
}

// Transform reshapes input without coercion or validation: values are read
// from their input keys (defaults applied), Into hooks run and results are
// written under the output keys.
func Transform(ctx context.Context, input any, schema Schema) (map[string]any, error) {
	c, err := normalizeFor(ctx, schema)
	if err != nil {
		return nil, err
	}
	return c.Transform(ctx, input)
}

// CastInto casts input and decodes the output record into dst, a pointer to
// a struct or map. Struct fields are matched by their json tag.
func CastInto(ctx context.Context, input any, schema Schema, dst any) error {
	out, err := Cast(ctx, input, schema)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  dst,
	})
	if err != nil {
		return fmt.Errorf("tarams: decode target: %w", err)
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("tarams: decode: %w", err)
	}
	return nil
}

// CastWithMeta is like Cast and also reports, per output field, whether the
// key was seen, was nil or received its default.
func CastWithMeta(ctx context.Context, input any, schema Schema) (Decoded, error) {
	c, err := normalizeFor(ctx, schema)
	if err != nil {
		return Decoded{}, err
	}
	return c.CastWithMeta(ctx, input)
}

// Cast runs the cast pipeline against a normalized schema.
func (c *Canonical) Cast(ctx context.Context, input any) (map[string]any, error) {
	return c.run(newPipeline(ctx, modeCast), input)
}

// CastWithMeta runs the cast pipeline and collects presence metadata.
func (c *Canonical) CastWithMeta(ctx context.Context, input any) (Decoded, error) {
	p := newPipeline(ctx, modeCast)
	p.presence = PresenceMap{}
	out, err := c.run(p, input)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Value: out, Presence: p.presence}, nil
}

// Validate runs the validation pipeline against a normalized schema.
func (c *Canonical) Validate(ctx context.Context, input any) error {
	_, err := c.run(newPipeline(ctx, modeValidate), input)
	return err
}

// Transform runs the transform pipeline against a normalized schema.
func (c *Canonical) Transform(ctx context.Context, input any) (map[string]any, error) {
	return c.run(newPipeline(ctx, modeTransform), input)
}

func normalizeFor(ctx context.Context, schema Schema) (*Canonical, error) {
	c, err := Normalize(schema)
	if err != nil {
		loggerFrom(ctx).Debug("schema error", "error", err)
	}
	return c, err
}

func (c *Canonical) run(p *pipeline, input any) (map[string]any, error) {
	in, ok := asRecord(input)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidInput, input)
	}
	out, errs := p.record(c, in, "")
	if errs != nil {
		return nil, errs
	}
	return out, nil
}
