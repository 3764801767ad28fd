package tarams

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/bluzky/tarams/coerce"
	"github.com/bluzky/tarams/internal/hook"
)

var (
	_registryMu sync.RWMutex
	_hooks      = map[string]any{}
	_types      = map[string]Coercible{}
)

// RegisterHook makes fn available to schemas as Named(name). fn must be a
// function; its signature is checked when a schema referencing it is
// normalized.
func RegisterHook(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("tarams: hook name must not be empty")
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%w: hook %q is %T", ErrBadHook, name, fn)
	}
	_registryMu.Lock()
	defer _registryMu.Unlock()
	if _, ok := _hooks[name]; ok {
		return fmt.Errorf("%w: hook %q", ErrDuplicate, name)
	}
	_hooks[name] = fn
	return nil
}

// RegisterType makes c available to schemas as Kind(name). Built-in kind
// names cannot be overridden.
func RegisterType(name string, c Coercible) error {
	if name == "" || c == nil {
		return fmt.Errorf("tarams: type name and implementation are required")
	}
	if coerce.Kind(name).Builtin() {
		return fmt.Errorf("%w: %q is a built-in kind", ErrDuplicate, name)
	}
	_registryMu.Lock()
	defer _registryMu.Unlock()
	if _, ok := _types[name]; ok {
		return fmt.Errorf("%w: type %q", ErrDuplicate, name)
	}
	_types[name] = c
	return nil
}

// RegisteredTypes lists the names passed to RegisterType in sorted order.
func RegisteredTypes() []string {
	_registryMu.RLock()
	defer _registryMu.RUnlock()
	out := lo.Keys(_types)
	slices.Sort(out)
	return out
}

func lookupType(name string) (Coercible, bool) {
	_registryMu.RLock()
	defer _registryMu.RUnlock()
	c, ok := _types[name]
	return c, ok
}

// ResolveHook resolves a hook declaration (a function or a Named reference)
// into its invocable form. A nil declaration resolves to nil.
func ResolveHook(fn any) (*hook.Invocable, error) {
	name := ""
	if n, ok := fn.(Named); ok {
		_registryMu.RLock()
		f, found := _hooks[string(n)]
		_registryMu.RUnlock()
		if !found {
			return nil, fmt.Errorf("%w: no hook registered as %q", ErrBadHook, string(n))
		}
		name, fn = string(n), f
	}
	inv, err := hook.Resolve(fn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHook, err)
	}
	if inv != nil && name != "" {
		named := *inv
		named.Name = name
		inv = &named
	}
	return inv, nil
}
