package genctx

import (
	"testing"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

type testEmitter struct {
	fb *ir.FuncBuilder
}

func (e *testEmitter) Builder() ir.Builder { return e.fb }

func newTestStack() (*Stack, *testEmitter) {
	e := &testEmitter{fb: ir.NewFunc("test", ir.NewPackage("test"))}
	return NewStack(New(e)), e
}

func TestDeclareAssign(t *testing.T) {
	s, e := newTestStack()
	ctx := s.Current()

	v := value.Make(e.fb.Literal(1, 32), value.Int())
	if err := ctx.Declare("x", v); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if err := ctx.Declare("x", v); err == nil {
		t.Error("redeclaration in the same frame not rejected")
	}
	if err := ctx.Assign("y", v); err == nil {
		t.Error("assignment to undeclared variable not rejected")
	}
	w := value.Make(e.fb.Literal(2, 32), value.Int())
	if err := ctx.Assign("x", w); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	got, ok := ctx.Get("x")
	if !ok || got.Node() != w.Node() {
		t.Error("assignment did not rebind x")
	}
}

func TestNamesSorted(t *testing.T) {
	s, e := newTestStack()
	ctx := s.Current()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := ctx.Declare(n, value.Make(e.fb.Literal(0, 32), value.Int())); err != nil {
			t.Fatalf("declare %s failed: %v", n, err)
		}
	}
	names := ctx.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestPopPropagatesAssignments(t *testing.T) {
	s, e := newTestStack()
	root := s.Current()
	outer := value.Make(e.fb.Literal(1, 32), value.Int())
	if err := root.Declare("x", outer); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	child := s.Push()
	inner := value.Make(e.fb.Literal(2, 32), value.Int())
	if err := child.Assign("x", inner); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	// Declared-in-frame bindings stay in the frame.
	if err := child.Declare("local", inner); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	s.Pop()

	got, _ := root.Get("x")
	if got.Node() != inner.Node() {
		t.Error("assignment did not propagate to the parent frame")
	}
	if _, ok := root.Get("local"); ok {
		t.Error("frame-local declaration leaked into the parent")
	}
}

func TestPopBreakMasksParent(t *testing.T) {
	s, e := newTestStack()
	root := s.Current()

	child := s.Push()
	brk := e.fb.Literal(1, 1)
	child.OrIntoBreak(brk)
	s.Pop()

	if root.RelBreakCond != brk {
		t.Error("break condition did not propagate")
	}
	if root.FullCond == nil {
		t.Error("parent path condition not narrowed by the break")
	}
}

func TestPushFreshIsolates(t *testing.T) {
	s, e := newTestStack()
	root := s.Current()
	if err := root.Declare("x", value.Make(e.fb.Literal(1, 32), value.Int())); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	other := &testEmitter{fb: ir.NewFunc("other", ir.NewPackage("test"))}
	fresh := s.PushFresh(other)
	if _, ok := fresh.Get("x"); ok {
		t.Error("fresh frame sees parent bindings")
	}
	if err := fresh.Declare("x", value.Make(other.fb.Literal(9, 32), value.Int())); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	s.Pop()
	got, _ := root.Get("x")
	if got.Node() == nil || got.Node().Bits != 1 {
		t.Error("fresh frame modified the parent binding")
	}
}

func TestGuardRelease(t *testing.T) {
	s, _ := newTestStack()
	root := s.Current()
	g := s.Guard()
	if s.Current() == root {
		t.Fatal("guard did not push a frame")
	}
	g.Release()
	if s.Current() != root {
		t.Fatal("release did not restore the parent frame")
	}
	g.Release() // Idempotent.
	if s.Current() != root {
		t.Fatal("double release changed the current frame")
	}
}

func TestCondBits(t *testing.T) {
	s, e := newTestStack()
	ctx := s.Current()
	if b := ctx.FullCondBit(); !b.IsLiteral(1) {
		t.Error("unconditional frame's full condition is not constant true")
	}
	cond := e.fb.Param("c", ir.Bits(1))
	ctx.AndCondition(cond)
	if ctx.FullCondBit() != cond {
		t.Error("narrowed condition not returned")
	}
	if ctx.RelCondBit() != cond {
		t.Error("relative condition not narrowed")
	}
}
