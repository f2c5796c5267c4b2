// Package assert panics on broken wiring, it is meant for constructor
// arguments and never for input data.
package assert

import "reflect"

// NotNil panics on nil, including a nil pointer, map, slice, chan or func
// held by the interface.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if v.IsNil() {
			panic("expected value to be not nil, got nil " + v.Type().String())
		}
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
