package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/laittg/chainable/pkg/api"
)

var (
	ctxType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	doneType = reflect.TypeOf(api.DoneFunc(nil))
)

// RegisterFunc adapts an arbitrary function into a step and registers
// it under name. The function's trailing parameter must be a
// completion callback assignable from api.DoneFunc; an optional
// leading context.Context parameter receives the chain context, and
// the remaining parameters are filled positionally from the arguments
// bound at call time.
//
// With ValidateStepSignature enabled the trailing-callback shape is
// checked here and a MalformedSignatureError is returned when it does
// not hold. The check is best-effort: it cannot prove the function
// actually calls its callback, and with validation disabled a
// non-conforming step simply stalls the chain at run time.
func (e *Engine) RegisterFunc(name string, fn any) error {
	step, err := adaptStep(name, fn, e.cfg.ValidateStepSignature)
	if err != nil {
		return err
	}
	return e.registry.Register(name, step)
}

func adaptStep(name string, fn any, validate bool) (api.StepFunc, error) {
	if fn == nil {
		return nil, &api.InvalidStepError{Name: name}
	}

	// Exact signatures need no reflection.
	switch sf := fn.(type) {
	case api.StepFunc:
		return sf, nil
	case func(context.Context, []any, api.DoneFunc):
		return sf, nil
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, &api.InvalidStepError{Name: name, Detail: fmt.Sprintf("got %T", fn)}
	}

	numIn := t.NumIn()
	wantsCtx := numIn > 0 && t.In(0) == ctxType

	if validate {
		if t.IsVariadic() {
			return nil, &api.MalformedSignatureError{Name: name, Detail: "variadic functions are not supported"}
		}
		last := numIn - 1
		if last < 0 || (wantsCtx && last == 0) || !bindable(doneType, t.In(last)) {
			return nil, &api.MalformedSignatureError{Name: name, Detail: "trailing parameter must be a completion callback"}
		}
	}

	return func(ctx context.Context, args []any, done api.DoneFunc) {
		in := make([]reflect.Value, numIn)

		first := 0
		if wantsCtx {
			in[0] = reflect.ValueOf(ctx)
			first = 1
		}

		// The trailing parameter is the callback; everything between is
		// filled from the bound arguments.
		for i := first; i < numIn-1; i++ {
			pt := t.In(i)
			argIdx := i - first
			if argIdx >= len(args) || args[argIdx] == nil {
				in[i] = reflect.Zero(pt)
				continue
			}
			av := reflect.ValueOf(args[argIdx])
			switch {
			case av.Type().AssignableTo(pt):
				in[i] = av
			case av.Type().ConvertibleTo(pt):
				in[i] = av.Convert(pt)
			default:
				done(fmt.Errorf("step %q: argument %d is %T, want %s", name, argIdx, args[argIdx], pt), nil)
				return
			}
		}

		if numIn > first {
			last := t.In(numIn - 1)
			dv := reflect.ValueOf(done)
			switch {
			case dv.Type().AssignableTo(last):
				in[numIn-1] = dv
			case dv.Type().ConvertibleTo(last):
				in[numIn-1] = dv.Convert(last)
			default:
				// Validation was off and the trailing parameter is not a
				// callback. The step gets a zero value there and the chain
				// stalls unless it completes through other means.
				in[numIn-1] = reflect.Zero(last)
			}
		}

		v.Call(in)
	}, nil
}

func bindable(from, to reflect.Type) bool {
	return from.AssignableTo(to) || from.ConvertibleTo(to)
}
