package core

import (
	"encoding/json"
	"reflect"
)

type optState uint8

const (
	optUnset optState = iota
	optNull
	optSet
)

// Opt is an optional request field with three states: unset (the zero
// value), explicit null and a concrete value.
//
// Unset fields are stripped from request payloads. Explicit nulls are
// stripped as well because the API treats them as absent, but the two states
// stay distinguishable for callers.
type Opt[T any] struct {
	value T
	state optState
}

// Value returns an Opt holding v. Falsy values such as 0, false and "" are
// still sent.
func Value[T any](v T) Opt[T] {
	return Opt[T]{value: v, state: optSet}
}

// Null returns an Opt explicitly set to null.
func Null[T any]() Opt[T] {
	return Opt[T]{state: optNull}
}

// IsOmitted reports whether the field was never set.
func (o Opt[T]) IsOmitted() bool { return o.state == optUnset }

// IsNull reports whether the field was explicitly set to null.
func (o Opt[T]) IsNull() bool { return o.state == optNull }

// Get returns the value and whether one is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.state == optSet
}

// Or returns the value, or fallback when no value is present.
func (o Opt[T]) Or(fallback T) T {
	if o.state == optSet {
		return o.value
	}
	return fallback
}

// MarshalJSON encodes unset and null as JSON null. Use Fields to strip them.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.state != optSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes JSON null as an explicit null.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Value(v)
	return nil
}

func (o Opt[T]) optional() (any, optState) { return o.value, o.state }

type optional interface {
	optional() (any, optState)
}

// Fields is a JSON object or query parameter set under construction. Values
// may be plain values, nil or Opt values.
type Fields map[string]any

// Clean returns a copy of f with null and omitted entries removed and every
// Opt unwrapped to its value.
func (f Fields) Clean() Fields {
	if f == nil {
		return nil
	}

	withoutNull := make(Fields, len(f))
	for key, value := range f {
		if isNullValue(value) {
			continue
		}
		withoutNull[key] = value
	}

	out := make(Fields, len(withoutNull))
	for key, value := range withoutNull {
		if opt, ok := value.(optional); ok {
			v, state := opt.optional()
			if state == optUnset || isNullValue(v) {
				continue
			}
			value = v
		}
		out[key] = value
	}

	return out
}

func isNullValue(value any) bool {
	if value == nil {
		return true
	}
	if opt, ok := value.(optional); ok {
		_, state := opt.optional()
		return state == optNull
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
