package solve

import (
	"testing"

	"github.com/gohls/looplower/ir"
)

func TestFoldArith(t *testing.T) {
	pkg := ir.NewPackage("test")
	fb := ir.NewFunc("f", pkg)
	f := NewFolder()

	sum := fb.Add(fb.Literal(3, 32), fb.Literal(4, 32))
	if v, ok := f.Eval(sum); !ok || v != 7 {
		t.Errorf("3+4 folds to (%d, %v), want (7, true)", v, ok)
	}
	neg := fb.Sub(fb.Literal(0, 32), fb.Literal(1, 32))
	lt := fb.Lt(neg, fb.Literal(0, 32))
	if v, ok := f.Eval(lt); !ok || v != 1 {
		t.Errorf("-1 < 0 folds to (%d, %v), want (1, true)", v, ok)
	}
}

func TestFoldUnknown(t *testing.T) {
	pkg := ir.NewPackage("test")
	fb := ir.NewFunc("f", pkg)
	f := NewFolder()

	p := fb.Param("x", ir.Bits(32))
	if _, ok := f.Eval(fb.Add(p, fb.Literal(1, 32))); ok {
		t.Error("sum over a parameter folded to a constant")
	}
}

func TestShortCircuit(t *testing.T) {
	pkg := ir.NewPackage("test")
	fb := ir.NewFunc("f", pkg)
	f := NewFolder()

	unknown := fb.Param("p", ir.Bits(1))
	and := fb.And(unknown, fb.Literal(0, 1))
	must, err := f.MustBe(and, false)
	if err != nil {
		t.Fatalf("MustBe failed: %v", err)
	}
	if !must {
		t.Error("conjunction with a false operand not proven false")
	}

	or := fb.Or(unknown, fb.Literal(1, 1))
	must, err = f.MustBe(or, true)
	if err != nil {
		t.Fatalf("MustBe failed: %v", err)
	}
	if !must {
		t.Error("disjunction with a true operand not proven true")
	}

	// Unknown alone never answers.
	must, err = f.MustBe(unknown, false)
	if err != nil {
		t.Fatalf("MustBe failed: %v", err)
	}
	if must {
		t.Error("bare parameter proven false")
	}
}

func TestFoldSelectAndTuple(t *testing.T) {
	pkg := ir.NewPackage("test")
	fb := ir.NewFunc("f", pkg)
	f := NewFolder()

	sel := fb.Select(fb.Literal(1, 1), fb.Literal(5, 32), fb.Literal(9, 32))
	if v, ok := f.Eval(sel); !ok || v != 5 {
		t.Errorf("select folds to (%d, %v), want (5, true)", v, ok)
	}

	// Both arms equal decides a select on an unknown condition.
	same := fb.Select(fb.Param("c", ir.Bits(1)), fb.Literal(2, 32), fb.Literal(2, 32))
	if v, ok := f.Eval(same); !ok || v != 2 {
		t.Errorf("same-arm select folds to (%d, %v), want (2, true)", v, ok)
	}

	tup := fb.Tuple(fb.Literal(1, 8), fb.Literal(42, 32))
	if v, ok := f.Eval(fb.TupleIndex(tup, 1)); !ok || v != 42 {
		t.Errorf("tuple index folds to (%d, %v), want (42, true)", v, ok)
	}
}

func TestTruncation(t *testing.T) {
	pkg := ir.NewPackage("test")
	fb := ir.NewFunc("f", pkg)
	f := NewFolder()

	// 255+1 wraps to 0 in 8 bits.
	wrap := fb.Add(fb.Literal(255, 8), fb.Literal(1, 8))
	if v, ok := f.Eval(wrap); !ok || v != 0 {
		t.Errorf("255+1 folds to (%d, %v), want (0, true)", v, ok)
	}
}
