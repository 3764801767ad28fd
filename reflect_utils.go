package tarams

import (
	"reflect"
	"strings"

	"github.com/bluzky/tarams/coerce"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key when a struct is used as an input record.
// Priority: tarams:"name" > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if tt := sf.Tag.Get("tarams"); tt != "" {
		if i := strings.IndexByte(tt, ','); i >= 0 {
			tt = tt[:i]
		}
		if tt != "" {
			return tt
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

// record is an input record. Lookups try the external key first and fall
// back to the Go identifier for struct inputs.
type record struct {
	m      map[string]any
	idents map[string]any
}

func (r record) get(key string) (any, bool) {
	if v, ok := r.m[key]; ok {
		return v, true
	}
	if r.idents != nil {
		v, ok := r.idents[key]
		return v, ok
	}
	return nil, false
}

// asRecord accepts string-keyed maps, other maps (keys rendered as strings)
// and structs or pointers to structs. A nil input is the empty record.
func asRecord(v any) (record, bool) {
	switch t := v.(type) {
	case nil:
		return record{m: map[string]any{}}, true
	case map[string]any:
		if t == nil {
			t = map[string]any{}
		}
		return record{m: t}, true
	}
	if m, ok := coerce.AsMap(v); ok {
		return record{m: m}, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return record{m: map[string]any{}}, true
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return record{}, false
	}
	rt := rv.Type()
	r := record{
		m:      make(map[string]any, rt.NumField()),
		idents: make(map[string]any, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		fv := rv.Field(i).Interface()
		r.m[key] = fv
		r.idents[sf.Name] = fv
	}
	return r, true
}
