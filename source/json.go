// Package source decodes input documents into records ready for casting.
// JSON numbers are kept as json.Number so integer and decimal casts see the
// original digits.
package source

import (
	"errors"
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"
)

// DefaultMaxDepth bounds object and array nesting.
const DefaultMaxDepth = 64

var (
	ErrNotObject     = errors.New("source: document root is not an object")
	ErrTooDeep       = errors.New("source: maximum nesting depth exceeded")
	ErrTrailingData  = errors.New("source: trailing data after document")
	ErrUnknownFormat = errors.New("source: unknown format")
)

// DuplicateKeyError reports an object key seen twice.
type DuplicateKeyError struct {
	Path string // JSON Pointer of the duplicated member
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("source: duplicate key at %s", e.Path)
}

// Options tunes JSON decoding.
type Options struct {
	MaxDepth           int  // 0 means DefaultMaxDepth
	AllowDuplicateKeys bool // last value wins when set
}

// JSON decodes a single JSON object from r with default options.
func JSON(r io.Reader) (map[string]any, error) { return JSONWith(r, Options{}) }

// JSONWith decodes a single JSON object from r. Duplicate keys are rejected
// unless opt allows them.
func JSONWith(r io.Reader, opt Options) (map[string]any, error) {
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &decoder{dec: dec, opt: opt}

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrNotObject)
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	if delim, ok := tok.(j.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}
	out, err := d.object("", 1)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return out, nil
}

type decoder struct {
	dec *j.Decoder
	opt Options
}

func (d *decoder) value(tok j.Token, ptr string, depth int) (any, error) {
	delim, ok := tok.(j.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return d.object(ptr, depth+1)
	case '[':
		return d.array(ptr, depth+1)
	}
	return nil, fmt.Errorf("source: unexpected %q at %q", rune(delim), ptr)
}

func (d *decoder) object(ptr string, depth int) (map[string]any, error) {
	if depth > d.opt.MaxDepth {
		return nil, fmt.Errorf("%w at %q", ErrTooDeep, ptr)
	}
	out := map[string]any{}
	for d.dec.More() {
		kt, err := d.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("source: object key at %q is not a string", ptr)
		}
		child := ptr + "/" + escape(key)
		if _, dup := out[key]; dup && !d.opt.AllowDuplicateKeys {
			return nil, &DuplicateKeyError{Path: child}
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		v, err := d.value(vt, child, depth)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return out, nil
}

func (d *decoder) array(ptr string, depth int) ([]any, error) {
	if depth > d.opt.MaxDepth {
		return nil, fmt.Errorf("%w at %q", ErrTooDeep, ptr)
	}
	out := []any{}
	for i := 0; d.dec.More(); i++ {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		v, err := d.value(tok, fmt.Sprintf("%s/%d", ptr, i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return out, nil
}

var _escaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(s string) string { return _escaper.Replace(s) }
