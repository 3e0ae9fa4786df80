package hookguard

import (
	"bytes"
	"strings"
	"testing"

	"hookguard/internal/config"
	"hookguard/internal/diag"
)

// newTestUnit wires a unit to a private bag and store so tests are
// isolated from the process-wide shared state.
func newTestUnit(t *testing.T) (*Unit, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(50)
	u := New(
		WithReporter(diag.BagReporter{Bag: bag}),
		WithStore(diag.NewStore()),
		WithResolver(func() string { return "test.site" }),
	)
	t.Cleanup(u.Unmount)
	return u, bag
}

func codesOf(bag *diag.Bag) []diag.Code {
	items := bag.Items()
	out := make([]diag.Code, 0, len(items))
	for _, d := range items {
		out = append(out, d.Code)
	}
	return out
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, c := range codesOf(bag) {
		if c == code {
			n++
		}
	}
	return n
}

func TestMemoMemoizes(t *testing.T) {
	u, _ := newTestUnit(t)
	s := u.Site("memo")

	calls := 0
	compute := func() int { calls++; return calls }

	a, b := "a", "b"
	if got := Memo(s, compute, []any{a, b}); got != 1 {
		t.Fatalf("first cycle = %d, want 1", got)
	}
	if got := Memo(s, compute, []any{a, b}); got != 1 {
		t.Fatalf("unchanged deps recomputed: got %d", got)
	}
	if got := Memo(s, compute, []any{a, "x"}); got != 2 {
		t.Fatalf("changed deps did not recompute: got %d", got)
	}
	if calls != 2 {
		t.Errorf("compute calls = %d, want 2", calls)
	}
}

func TestMemoLengthChangeScenario(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")

	a, b, c := "a", "b", "c"
	compute := func() int { return 0 }

	Memo(s, compute, []any{a, b}) // cycle 1: no previous, no report
	Memo(s, compute, []any{a, b}) // cycle 2: no change
	if bag.Len() != 0 {
		t.Fatalf("diagnostics before any change: %+v", bag.Items())
	}
	Memo(s, compute, []any{a, b, c}) // cycle 3: length 2 -> 3
	if n := countCode(bag, diag.DepLengthChanged); n != 1 {
		t.Fatalf("DepLengthChanged count = %d, want 1", n)
	}
	d := bag.Items()[0]
	if !strings.Contains(d.Detail, "previous length 2") || !strings.Contains(d.Detail, "current length 3") {
		t.Errorf("detail does not carry both lengths: %q", d.Detail)
	}

	// Length changes are re-reported on every recurrence.
	Memo(s, compute, []any{a, b}) // back to 2
	if n := countCode(bag, diag.DepLengthChanged); n != 2 {
		t.Errorf("recurring length change not re-reported: count = %d", n)
	}
}

func TestMemoUnstableDependencyWarnedOnce(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")
	compute := func() int { return 0 }

	for i := 0; i < 5; i++ {
		// A fresh but content-equal map on every cycle.
		Memo(s, compute, []any{map[string]int{"x": 1}})
	}
	if n := countCode(bag, diag.StbUnstableReference); n != 1 {
		t.Errorf("StbUnstableReference count = %d, want 1 (deduplicated)", n)
	}
}

func TestMemoExcessiveRecompute(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo", WithSiteRecomputeThreshold(3))
	compute := func() int { return 0 }

	for i := 0; i < 6; i++ {
		Memo(s, compute, []any{i}) // deps change every cycle
	}
	if n := countCode(bag, diag.FrqExcessiveRecompute); n != 1 {
		t.Errorf("FrqExcessiveRecompute count = %d, want 1", n)
	}
}

func TestMemoAbsentDeps(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")

	calls := 0
	compute := func() int { calls++; return calls }
	for i := 0; i < 3; i++ {
		Memo(s, compute, nil)
	}
	if calls != 3 {
		t.Errorf("absent deps must recompute every cycle: calls = %d", calls)
	}
	if n := countCode(bag, diag.DepListAbsent); n != 1 {
		t.Errorf("DepListAbsent count = %d, want 1", n)
	}
}

func TestEmptyDepsNeverRecompute(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")

	calls := 0
	compute := func() int { calls++; return calls }
	for i := 0; i < 4; i++ {
		Memo(s, compute, Deps())
	}
	if calls != 1 {
		t.Errorf("empty deps recomputed: calls = %d", calls)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestDepsToggleReportedEveryTime(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")
	compute := func() int { return 0 }

	Memo(s, compute, []any{1})
	Memo(s, compute, nil)
	Memo(s, compute, []any{1})
	if n := countCode(bag, diag.DepListToggled); n != 2 {
		t.Errorf("DepListToggled count = %d, want 2 (reported on every toggle)", n)
	}
}

func TestCallbackStability(t *testing.T) {
	u, _ := newTestUnit(t)
	s := u.Site("cb")

	mk := func(n int) func() int { return func() int { return n } }
	dep := "stable"

	first := Callback(s, mk(1), []any{dep})
	second := Callback(s, mk(2), []any{dep})
	if first() != second() {
		t.Error("unchanged deps must return the memoized callback")
	}
	third := Callback(s, mk(3), []any{"other"})
	if third() != 3 {
		t.Error("changed deps must adopt the new callback")
	}
}

func TestCallbackExcessiveChange(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("cb")

	mk := func(n int) func() int { return func() int { return n } }
	for i := 0; i < 4; i++ {
		Callback(s, mk(i), []any{i}) // identity changes on cycles 1..4
	}
	if n := countCode(bag, diag.FrqExcessiveChange); n != 1 {
		t.Errorf("FrqExcessiveChange count = %d, want 1", n)
	}
}

func TestCallbackStableNeverWarns(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("cb")

	fn := func() int { return 1 }
	for i := 0; i < 10; i++ {
		Callback(s, fn, Deps())
	}
	if n := countCode(bag, diag.FrqExcessiveChange); n != 0 {
		t.Errorf("stable callback warned: %+v", bag.Items())
	}
}

func TestEffectRunsOnChange(t *testing.T) {
	u, _ := newTestUnit(t)
	s := u.Site("fx")

	runs, cleanups := 0, 0
	run := func() func() {
		runs++
		return func() { cleanups++ }
	}

	Effect(s, run, []any{1})
	Effect(s, run, []any{1})
	if runs != 1 || cleanups != 0 {
		t.Fatalf("after unchanged deps: runs=%d cleanups=%d", runs, cleanups)
	}
	Effect(s, run, []any{2})
	if runs != 2 || cleanups != 1 {
		t.Fatalf("after changed deps: runs=%d cleanups=%d (cleanup before re-run)", runs, cleanups)
	}
	u.Unmount()
	if cleanups != 2 {
		t.Errorf("unmount did not run outstanding cleanup: cleanups=%d", cleanups)
	}
}

func TestStateAfterUnmount(t *testing.T) {
	u, bag := newTestUnit(t)

	get, set := State(u, 10)
	set(11)
	if got := get(); got != 11 {
		t.Fatalf("get = %d, want 11", got)
	}
	u.Unmount()
	set(12)
	set(13)
	if got := get(); got != 11 {
		t.Errorf("update after unmount applied: get = %d", got)
	}
	if n := countCode(bag, diag.LifUpdateAfterUnmount); n != 1 {
		t.Errorf("LifUpdateAfterUnmount count = %d, want 1 (deduplicated)", n)
	}
}

func TestUseContext(t *testing.T) {
	u, bag := newTestUnit(t)

	ctx := NewContext[string]()
	s := u.Site("ctx")

	v, err := UseContext(s, ctx)
	if err != nil || v != "" {
		t.Fatalf("warn-only path = (%q, %v), want zero value and nil error", v, err)
	}
	if n := countCode(bag, diag.CtxMissingProvider); n != 1 {
		t.Fatalf("CtxMissingProvider count = %d, want 1", n)
	}

	ctx.Provide("theme")
	v, err = UseContext(s, ctx)
	if err != nil || v != "theme" {
		t.Errorf("provided context = (%q, %v)", v, err)
	}
}

func TestUseContextRequired(t *testing.T) {
	u, bag := newTestUnit(t)

	ctx := NewContext[int]()
	s := u.Site("ctx", Required())

	if _, err := UseContext(s, ctx); err == nil {
		t.Fatal("Required site must return an error without a provider")
	} else if !strings.Contains(err.Error(), "ctx") {
		t.Errorf("error %q does not name the site", err)
	}
	if bag.Len() != 0 {
		t.Errorf("escalated path must not also warn: %+v", bag.Items())
	}
}

func TestGlobalDisableGatesEmission(t *testing.T) {
	t.Cleanup(func() { SetEnabled(true) })

	u, bag := newTestUnit(t)
	s := u.Site("memo")
	compute := func() int { return 0 }

	SetEnabled(false)
	calls := 0
	for i := 0; i < 4; i++ {
		Memo(s, func() int { calls++; return calls }, []any{map[string]int{"x": 1}})
	}
	if bag.Len() != 0 {
		t.Fatalf("disabled engine emitted diagnostics: %+v", bag.Items())
	}
	// Pure computations are not gated: memoization still works.
	if calls != 4 {
		t.Errorf("unstable deps must still recompute while disabled: calls = %d", calls)
	}

	SetEnabled(true)
	Memo(s, compute, []any{map[string]int{"x": 1}})
	if bag.Len() == 0 {
		t.Error("re-enabled engine stayed silent")
	}
}

func TestSharedStoreDedupsAcrossUnits(t *testing.T) {
	bag := diag.NewBag(10)
	store := diag.NewStore()
	mk := func() *Unit {
		return New(
			WithReporter(diag.BagReporter{Bag: bag}),
			WithStore(store),
			WithResolver(func() string { return "shared" }),
		)
	}
	u1, u2 := mk(), mk()
	defer u1.Unmount()
	defer u2.Unmount()

	// Different units allocate different handles, so the same issue at
	// different sites stays distinct.
	s1, s2 := u1.Site("a"), u2.Site("b")
	for i := 0; i < 3; i++ {
		Memo(s1, func() int { return 0 }, []any{map[string]int{"x": 1}})
		Memo(s2, func() int { return 0 }, []any{map[string]int{"x": 1}})
	}
	if got := countCode(bag, diag.StbUnstableReference); got != 2 {
		t.Errorf("distinct sites sharing a store must each report once, got %d", got)
	}
}

func TestSiteDropDestroysTracker(t *testing.T) {
	u, bag := newTestUnit(t)
	s := u.Site("memo")
	compute := func() int { return 0 }

	Memo(s, compute, []any{1})
	s.Drop()
	// A dropped site stays functional but silent.
	calls := 0
	Memo(s, func() int { calls++; return calls }, []any{1})
	Memo(s, func() int { calls++; return calls }, []any{1})
	if calls != 2 {
		t.Errorf("dropped site should recompute every cycle: calls = %d", calls)
	}
	if bag.Len() != 0 {
		t.Errorf("dropped site emitted diagnostics: %+v", bag.Items())
	}
}

func TestConsoleSinkWiring(t *testing.T) {
	var buf bytes.Buffer
	u := New(
		WithWriter(&buf),
		WithStore(diag.NewStore()),
		WithResolver(func() string { return "Widget.render" }),
	)
	defer u.Unmount()

	s := u.Site("")
	compute := func() int { return 0 }
	Memo(s, compute, []any{"a"})
	Memo(s, compute, []any{"a", "b"})

	out := buf.String()
	if !strings.Contains(out, "Widget.render") || !strings.Contains(out, "DEP1001") {
		t.Errorf("console output missing site or code:\n%s", out)
	}
}

func TestPanickyResolverFallsBack(t *testing.T) {
	u := New(
		WithReporter(diag.NopReporter{}),
		WithStore(diag.NewStore()),
		WithResolver(func() string { panic("boom") }),
	)
	defer u.Unmount()
	s := u.Site("")
	if s.Label() != "unknown" {
		t.Errorf("label = %q, want unknown", s.Label())
	}
}

func TestEnabledDefault(t *testing.T) {
	if Enabled() != config.Enabled() {
		t.Error("Enabled does not mirror the config switch")
	}
}
