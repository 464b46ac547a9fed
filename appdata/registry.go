// Package appdata provides a typed read-only registry for per-application and
// per-route values. It replaces an untyped key-value bag: values are registered and
// looked up by their dynamic type, so a handler asking for a T either gets a T or
// nothing at all.
package appdata

import "reflect"

// Registry is a read-only collection of values keyed by their dynamic type. It is
// built once during application setup and shared between connections afterwards, so
// it must not be mutated once handed out.
type Registry struct {
	values map[reflect.Type]any
}

func New(values ...any) *Registry {
	r := &Registry{
		values: make(map[reflect.Type]any, len(values)),
	}

	for _, value := range values {
		r.values[reflect.TypeOf(value)] = value
	}

	return r
}

// With returns a copy of the registry extended with the passed values. The receiver
// stays untouched, so already shared snapshots never change underneath their users.
func (r *Registry) With(values ...any) *Registry {
	extended := &Registry{
		values: make(map[reflect.Type]any, len(r.values)+len(values)),
	}

	for key, value := range r.values {
		extended.values[key] = value
	}

	for _, value := range values {
		extended.values[reflect.TypeOf(value)] = value
	}

	return extended
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.values)
}

// Of looks a value of type T up in the registry. Nil registry is a valid empty one.
func Of[T any](r *Registry) (value T, found bool) {
	if r == nil {
		return value, false
	}

	stored, found := r.values[reflect.TypeOf((*T)(nil)).Elem()]
	if !found {
		return value, false
	}

	return stored.(T), true
}
