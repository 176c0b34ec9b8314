package reactive

import (
	"math"
	"reflect"
)

// EqualFunc reports whether two values are equal for change detection.
type EqualFunc[T any] func(a, b T) bool

// Identity compares with ==, except that two float NaNs count as equal so
// writing NaN over NaN is not a change.
func Identity[T comparable](a, b T) bool {
	return a == b || bothNaN(a, b)
}

// Structural compares with reflect.DeepEqual. NaN fields inside containers
// still compare unequal, as DeepEqual defines.
func Structural[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// defaultEqual returns == for scalar kinds and reflect.DeepEqual for
// everything else.
func defaultEqual[T any]() EqualFunc[T] {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return func(a, b T) bool { return any(a) == any(b) || bothNaN(a, b) }
	default:
		return Structural[T]
	}
}

// identityOf returns == for T, going through sameValue when T is an
// interface type whose dynamic values may not be comparable.
func identityOf[T comparable]() EqualFunc[T] {
	if reflect.TypeFor[T]().Kind() == reflect.Interface {
		return func(a, b T) bool { return sameValue(any(a), any(b)) }
	}
	return Identity[T]
}

// sameValue reports whether a and b are the same value by reference.
// Comparable values use ==, with NaN equal to NaN. Slices compare their
// backing array, length and capacity; maps, funcs, chans and pointers compare
// their pointer. Anything else (structs or arrays holding slices or maps)
// falls back to reflect.DeepEqual.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Cap() == vb.Cap() &&
			va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b || bothNaN(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// bothNaN reports whether a and b are floats of the same kind and both NaN.
func bothNaN(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		return vb.Kind() == va.Kind() && math.IsNaN(va.Float()) && math.IsNaN(vb.Float())
	}
	return false
}
