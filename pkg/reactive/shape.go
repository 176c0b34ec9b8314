package reactive

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mohae/deepcopy"
)

// checkStructural rejects values reflect.DeepEqual cannot meaningfully
// compare: funcs are never equal unless nil, chans and unsafe pointers only
// by identity.
func checkStructural(t reflect.Type, v reflect.Value, path string) error {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return shapeError("%s has kind %s, which structural equality cannot compare", path, t.Kind())
	case reflect.Interface:
		if !v.IsValid() || v.IsNil() {
			return nil
		}
		inner := v.Elem()
		return checkStructural(inner.Type(), inner, path)
	}
	return nil
}

// checkElements runs checkStructural over a container's element type, and
// over each element when that type is an interface.
func checkElements(elem reflect.Type, each func(func(reflect.Value) error) error, path string) error {
	if elem.Kind() != reflect.Interface {
		return checkStructural(elem, reflect.Value{}, path)
	}
	return each(func(v reflect.Value) error {
		return checkStructural(elem, v, path)
	})
}

// checkObject accepts structs and pointers to structs, directly or behind an
// interface.
func checkObject(v reflect.Value, t reflect.Type) error {
	if t.Kind() == reflect.Interface {
		if !v.IsValid() || v.IsNil() {
			return nil
		}
		v = v.Elem()
		t = v.Type()
	}
	switch t.Kind() {
	case reflect.Struct:
		return nil
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return nil
		}
	case reflect.Map:
		return shapeError("object cell got %s; map values need a Map or Set cell or a custom predicate", t)
	case reflect.Slice, reflect.Array:
		return shapeError("object cell got %s; use an Array cell", t)
	}
	return shapeError("object cell got %s; use a Scalar cell", t)
}

var (
	copierType = reflect.TypeFor[deepcopy.Interface]()
	timeType   = reflect.TypeFor[time.Time]()
)

// checkCopyable rejects object types whose drafts would silently drop state:
// deep copies skip unexported fields. Types that implement
// deepcopy.Interface copy themselves and are accepted.
func checkCopyable(v reflect.Value, t reflect.Type) error {
	if t.Kind() == reflect.Interface {
		if !v.IsValid() || v.IsNil() {
			return nil
		}
		t = v.Elem().Type()
	}
	if field := unexportedField(t, map[reflect.Type]bool{}); field != "" {
		return shapeError("object cell got %s with unexported field %s, which Mutate cannot copy; implement deepcopy.Interface", t, field)
	}
	return nil
}

// unexportedField returns the first unexported struct field reachable from t
// by value, or "".
func unexportedField(t reflect.Type, seen map[reflect.Type]bool) string {
	if seen[t] {
		return ""
	}
	seen[t] = true
	if t == timeType || t.Implements(copierType) {
		return ""
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return unexportedField(t.Elem(), seen)
	case reflect.Map:
		if f := unexportedField(t.Key(), seen); f != "" {
			return f
		}
		return unexportedField(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				return t.String() + "." + f.Name
			}
			if name := unexportedField(f.Type, seen); name != "" {
				return name
			}
		}
	}
	return ""
}

// checkComparable rejects dynamic values that would panic under ==.
func checkComparable(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.Comparable() {
		return shapeError("scalar cell got %s, which is not comparable", v.Type())
	}
	return nil
}

func typeName[T any]() string {
	return fmt.Sprint(reflect.TypeFor[T]())
}
