// Package ident implements the value-identity and shallow structural
// equality used by the dependency engine.
//
// Identity follows value-identity semantics rather than plain numeric
// equality: NaN is identical to itself, +0 and -0 are distinct, and
// reference kinds (maps, slices, funcs, pointers, channels) compare by
// reference, never by content. ShallowEqual relaxes identity by exactly one
// structural level and is the building block for unstable-reference
// detection.
package ident

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unsafe"
)

// Is reports whether a and b are the same value under identity semantics.
// It never panics, whatever the dynamic types of its arguments.
func Is(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch x := a.(type) {
	case float64:
		return floatIs(x, b.(float64))
	case float32:
		return floatIs(float64(x), float64(b.(float32)))
	}
	switch ta.Kind() {
	case reflect.Func:
		// Each closure is its own object: compare the interface data
		// pointers, not the shared code pointer.
		return ifaceData(a) == ifaceData(b)
	case reflect.Slice:
		va := reflect.ValueOf(a)
		vb := reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	// Static comparability is not enough: a comparable struct can carry an
	// uncomparable dynamic value in an interface field, and == on it panics
	// at runtime. reflect.Value.Comparable checks the dynamic values.
	if ta.Comparable() && reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	// Values without a usable identity once boxed (e.g. structs embedding
	// slices); treat every pair as distinct.
	return false
}

func floatIs(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}

// IsComposite reports whether v is an object-like value: a non-nil map,
// slice, pointer, struct or func. Scalars, strings and nil are not
// composite.
func IsComposite(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Func:
		return !rv.IsNil()
	case reflect.Struct:
		return true
	}
	return false
}

// ShallowEqual reports whether a and b are identical, or are composite
// values whose immediate contents are pairwise identical. Comparison depth
// is exactly one level: nested values compare by identity only. It never
// panics.
func ShallowEqual(a, b any) bool {
	if Is(a, b) {
		return true
	}
	if !IsComposite(a) || !IsComposite(b) {
		return false
	}
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !Is(elem(va.Index(i)), elem(vb.Index(i))) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !Is(elem(iter.Value()), elem(other)) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if va.Elem().Kind() != reflect.Struct {
			return false
		}
		return structShallowEqual(va.Elem(), vb.Elem())
	case reflect.Struct:
		return structShallowEqual(va, vb)
	case reflect.Func:
		// A closure recreated from the same function body counts as
		// content-equal: same code, different object.
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// structShallowEqual compares exported fields by identity. Unexported
// fields are skipped; an accepted blind spot of the heuristic.
func structShallowEqual(a, b reflect.Value) bool {
	t := a.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		if !Is(elem(a.Field(i)), elem(b.Field(i))) {
			return false
		}
	}
	return true
}

func elem(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// ShallowFields renders the immediate contents of a composite value as a
// key-to-token map, using token to stringify each element. The result
// mirrors what ShallowEqual compares: map entries, slice positions,
// exported struct fields. Funcs have no observable shallow content and
// yield an empty map. Non-composite values yield nil.
func ShallowFields(v any, token func(any) string) map[string]string {
	if !IsComposite(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	fields := map[string]string{}
	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			fields[fmt.Sprint(iter.Key().Interface())] = token(elem(iter.Value()))
		}
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			fields[strconv.Itoa(i)] = token(elem(rv.Index(i)))
		}
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			fields[t.Field(i).Name] = token(elem(rv.Field(i)))
		}
	}
	return fields
}

type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

func ifaceData(v any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&v)).data
}
