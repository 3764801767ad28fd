// Package hook resolves user-supplied functions of varying arity and return
// shape into a uniform Invocable. Resolution happens once, when a schema is
// normalized; calls never re-inspect the function type.
package hook

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bluzky/tarams/coerce"
)

// Arity is the closed set of calling conventions.
type Arity int

const (
	Bad     Arity = iota // unsupported signature: reports "bad function" when called
	Unary                // f(value)
	Binary               // f(value, record)
	Ternary              // f(field, value, record)
)

func (a Arity) String() string {
	switch a {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Ternary:
		return "ternary"
	default:
		return "bad"
	}
}

type shape int

const (
	shapeError     shape = iota // func(...) error
	shapeBool                   // func(...) bool
	shapeResult                 // func(...) Result
	shapeAny                    // func(...) any
	shapeValueErr               // func(...) (T, error)
)

// ErrNotFunc is returned by Resolve for values that are not functions.
var ErrNotFunc = errors.New("hook: not a function")

var (
	_anyType    = reflect.TypeOf((*any)(nil)).Elem()
	_errType    = reflect.TypeOf((*error)(nil)).Elem()
	_recType    = reflect.TypeOf(map[string]any(nil))
	_strType    = reflect.TypeOf("")
	_boolType   = reflect.TypeOf(true)
	_resultType = reflect.TypeOf(Result{})
)

// Result is the loose tagged return value for hooks declared as returning
// Result or any.
type Result struct {
	value  any
	msgs   []string
	failed bool
}

// Ok wraps a successful hook value.
func Ok(v any) Result { return Result{value: v} }

// Fail reports a hook failure. Without messages it is the generic failure
// signal.
func Fail(msgs ...string) Result { return Result{msgs: msgs, failed: true} }

// Invocable is a resolved hook.
type Invocable struct {
	Name  string // set for named hooks
	Arity Arity
	fn    reflect.Value
	out   shape
}

// Resolve inspects fn once and returns its Invocable. A nil fn yields
// (nil, nil). Function values with an unsupported signature resolve to the
// Bad arity rather than failing.
func Resolve(fn any) (*Invocable, error) {
	if fn == nil {
		return nil, nil
	}
	if inv, ok := fn.(*Invocable); ok {
		return inv, nil
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}
	if rv.IsNil() {
		return nil, nil
	}
	inv := &Invocable{fn: rv}
	rt := rv.Type()
	out, ok := outputShape(rt)
	if !ok || rt.IsVariadic() {
		inv.Arity = Bad
		return inv, nil
	}
	inv.out = out
	inv.Arity = arityOf(rt)
	return inv, nil
}

func arityOf(rt reflect.Type) Arity {
	switch rt.NumIn() {
	case 1:
		if rt.In(0) == _anyType {
			return Unary
		}
	case 2:
		if rt.In(0) == _anyType && rt.In(1) == _recType {
			return Binary
		}
	case 3:
		if rt.In(0) == _strType && rt.In(1) == _anyType && rt.In(2) == _recType {
			return Ternary
		}
	}
	return Bad
}

func outputShape(rt reflect.Type) (shape, bool) {
	switch rt.NumOut() {
	case 1:
		switch rt.Out(0) {
		case _errType:
			return shapeError, true
		case _boolType:
			return shapeBool, true
		case _resultType:
			return shapeResult, true
		case _anyType:
			return shapeAny, true
		}
	case 2:
		if rt.Out(1) == _errType {
			return shapeValueErr, true
		}
	}
	return 0, false
}

// Status classifies a hook outcome.
type Status int

const (
	OK           Status = iota
	Failed              // explicit failure, Messages may be empty (generic)
	Unrecognized        // the hook returned a shape outside the contract
	BadFunction         // unsupported signature or the hook panicked
)

// Outcome is the normalized result of a hook call.
type Outcome struct {
	Status   Status
	Value    any
	HasValue bool
	Messages []string
	Err      error // Optional: the error returned by the hook.
	// Predicate is set for hooks declared as returning bool; Value then
	// holds the verdict rather than a replacement value.
	Predicate bool
}

// messageLister is implemented by error values carrying a message list.
type messageLister interface {
	MessageList() []string
}

// Call invokes the hook with the arguments its arity accepts.
func (h *Invocable) Call(field string, v any, record map[string]any) (oc Outcome) {
	if h == nil || h.Arity == Bad {
		return Outcome{Status: BadFunction}
	}
	defer func() {
		if r := recover(); r != nil {
			oc = Outcome{Status: BadFunction, Err: fmt.Errorf("hook panic: %v", r)}
		}
	}()
	rt := h.fn.Type()
	var args []reflect.Value
	switch h.Arity {
	case Unary:
		args = []reflect.Value{argOf(v, rt.In(0))}
	case Binary:
		args = []reflect.Value{argOf(v, rt.In(0)), argOf(record, rt.In(1))}
	case Ternary:
		args = []reflect.Value{reflect.ValueOf(field), argOf(v, rt.In(1)), argOf(record, rt.In(2))}
	}
	return h.interpret(h.fn.Call(args))
}

func argOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	if m, ok := v.(map[string]any); ok && m == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

func (h *Invocable) interpret(outs []reflect.Value) Outcome {
	switch h.out {
	case shapeError:
		if err, _ := outs[0].Interface().(error); err != nil {
			return failure(err)
		}
		return Outcome{Status: OK}
	case shapeBool:
		return Outcome{Status: OK, Value: outs[0].Bool(), HasValue: true, Predicate: true}
	case shapeResult:
		return fromResult(outs[0].Interface().(Result))
	case shapeAny:
		switch r := outs[0].Interface().(type) {
		case nil:
			return Outcome{Status: OK}
		case Result:
			return fromResult(r)
		case error:
			return failure(r)
		default:
			return Outcome{Status: Unrecognized, Value: r}
		}
	case shapeValueErr:
		if err, _ := outs[1].Interface().(error); err != nil {
			return failure(err)
		}
		return Outcome{Status: OK, Value: outs[0].Interface(), HasValue: true}
	}
	return Outcome{Status: Unrecognized}
}

func fromResult(r Result) Outcome {
	if r.failed {
		return Outcome{Status: Failed, Messages: r.msgs}
	}
	return Outcome{Status: OK, Value: r.value, HasValue: true}
}

// failure maps a returned error to a Failed outcome. Errors wrapping
// coerce.ErrInvalid are the generic failure signal and carry no messages.
func failure(err error) Outcome {
	oc := Outcome{Status: Failed, Err: err}
	var ml messageLister
	switch {
	case errors.As(err, &ml):
		oc.Messages = ml.MessageList()
	case errors.Is(err, coerce.ErrInvalid):
	default:
		oc.Messages = []string{err.Error()}
	}
	return oc
}
