package ident

import (
	"math"
	"testing"
)

func TestIsScalars(t *testing.T) {
	nan := math.NaN()
	negZero := math.Copysign(0, -1)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"equal strings", "dep", "dep", true},
		{"different types", 1, "1", false},
		{"int vs int64", int(1), int64(1), false},
		{"nil both", nil, nil, true},
		{"nil left", nil, 1, false},
		{"nil right", "x", nil, false},
		{"NaN is NaN", nan, nan, true},
		{"NaN vs number", nan, 1.0, false},
		{"zero vs neg zero", 0.0, negZero, false},
		{"neg zero both", negZero, negZero, true},
		{"equal floats", 1.5, 1.5, true},
		{"bools", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.a, tt.b); got != tt.want {
				t.Errorf("Is(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Identity is symmetric.
			if got := Is(tt.b, tt.a); got != tt.want {
				t.Errorf("Is(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestIsReferences(t *testing.T) {
	m1 := map[string]int{"a": 1}
	m2 := map[string]int{"a": 1}
	s1 := []int{1, 2}
	s2 := []int{1, 2}
	f1 := func() {}
	f2 := func() {}
	p1 := &struct{ X int }{X: 1}
	p2 := &struct{ X int }{X: 1}

	if !Is(m1, m1) {
		t.Error("map not identical to itself")
	}
	if Is(m1, m2) {
		t.Error("distinct maps reported identical")
	}
	if !Is(s1, s1) {
		t.Error("slice not identical to itself")
	}
	if Is(s1, s2) {
		t.Error("distinct slices reported identical")
	}
	if !Is(f1, f1) {
		t.Error("func not identical to itself")
	}
	if Is(f1, f2) {
		t.Error("distinct funcs reported identical")
	}
	if !Is(p1, p1) {
		t.Error("pointer not identical to itself")
	}
	if Is(p1, p2) {
		t.Error("distinct pointers reported identical")
	}
}

func TestIsClosureIdentity(t *testing.T) {
	mk := func(n int) func() int { return func() int { return n } }
	a := mk(1)
	b := mk(1)
	if Is(a, b) {
		t.Error("two closures of the same body must have distinct identity")
	}
	if !Is(a, a) {
		t.Error("closure must be identical to itself")
	}
}

func TestIsComposite(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"int", 1, false},
		{"string", "x", false},
		{"map", map[string]int{}, true},
		{"slice", []int{}, true},
		{"pointer", &struct{}{}, true},
		{"struct", struct{ X int }{}, true},
		{"func", func() {}, true},
		{"nil map", map[string]int(nil), false},
		{"nil slice", []int(nil), false},
		{"nil func", (func())(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComposite(tt.v); got != tt.want {
				t.Errorf("IsComposite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestShallowEqual(t *testing.T) {
	shared := []int{1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same reference", shared, shared, true},
		{"equal maps", map[string]any{"x": 1}, map[string]any{"x": 1}, true},
		{"maps differ in value", map[string]any{"x": 1}, map[string]any{"x": 2}, false},
		{"maps differ in keys", map[string]any{"x": 1}, map[string]any{"y": 1}, false},
		{"maps differ in size", map[string]any{"x": 1}, map[string]any{"x": 1, "y": 2}, false},
		{"equal slices", []any{1, "a"}, []any{1, "a"}, true},
		{"slices differ", []any{1}, []any{2}, false},
		{"slices length differ", []any{1}, []any{1, 2}, false},
		{"scalar vs composite", 1, []any{1}, false},
		{"scalars never shallow-equal unless identical", 1, 2, false},
		{"identical scalars", 3, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShallowEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ShallowEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := ShallowEqual(tt.b, tt.a); got != tt.want {
				t.Errorf("ShallowEqual(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestShallowEqualOneLevelOnly(t *testing.T) {
	// Nested values compare by identity, never recursively.
	inner := map[string]int{"n": 1}
	a := map[string]any{"inner": inner}
	b := map[string]any{"inner": inner}
	if !ShallowEqual(a, b) {
		t.Error("shared nested reference should be shallow-equal")
	}
	c := map[string]any{"inner": map[string]int{"n": 1}}
	if ShallowEqual(a, c) {
		t.Error("content-equal nested maps must not be shallow-equal (depth is one)")
	}
}

func TestShallowEqualStructs(t *testing.T) {
	type point struct{ X, Y int }
	p1 := &point{X: 1, Y: 2}
	p2 := &point{X: 1, Y: 2}
	p3 := &point{X: 1, Y: 3}
	if !ShallowEqual(p1, p2) {
		t.Error("pointers to field-identical structs should be shallow-equal")
	}
	if ShallowEqual(p1, p3) {
		t.Error("structs with differing field must not be shallow-equal")
	}
}

func TestShallowEqualRecreatedClosure(t *testing.T) {
	mk := func() func() int { return func() int { return 42 } }
	a := mk()
	b := mk()
	if Is(a, b) {
		t.Fatal("recreated closures must not be identical")
	}
	if !ShallowEqual(a, b) {
		t.Error("recreated closures of the same body should be shallow-equal")
	}
}

func TestNeverPanics(t *testing.T) {
	values := []any{
		nil, 1, "s", math.NaN(),
		[]int{1}, map[int]int{1: 2},
		struct{ S []int }{S: []int{1}},  // uncomparable struct
		struct{ X any }{X: []int{1}},    // comparable type, uncomparable dynamic value
		[2]any{[]int{1}, []int{2}},      // comparable array type, uncomparable elements
		func() {}, make(chan int),
		&struct{ X int }{},
	}
	for _, a := range values {
		for _, b := range values {
			_ = Is(a, b)
			_ = ShallowEqual(a, b)
			_ = IsComposite(a)
		}
	}
}

// A struct type with an interface field is comparable statically, but == on
// it panics when the field holds a slice. Is must fall back to "distinct",
// not crash.
func TestIsUncomparableDynamicValue(t *testing.T) {
	type holder struct{ X any }

	if Is(holder{X: []int{1}}, holder{X: []int{2}}) {
		t.Error("holders of distinct slices should not be identical")
	}
	h := holder{X: []int{1}}
	if Is(h, h) {
		t.Error("a boxed uncomparable value has no identity; copies are distinct")
	}
	if Is(holder{X: 1}, holder{X: 2}) {
		t.Error("holders of distinct ints should not be identical")
	}
	if !Is(holder{X: 1}, holder{X: 1}) {
		t.Error("holders of equal comparable values should be identical")
	}

	// The same slice seen through both copies is shallow-equal at one level.
	if !ShallowEqual(h, h) {
		t.Error("copies sharing the same slice should be shallow-equal")
	}
	if ShallowEqual(holder{X: []int{1}}, holder{X: []int{2}}) {
		t.Error("holders of distinct slices should not be shallow-equal")
	}
}
