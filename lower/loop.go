package lower

import (
	"go/ast"

	"github.com/gohls/looplower/pragma"
)

// A directive is the resolved lowering strategy for one loop.
type directive struct {
	kind pragma.Kind
	ii   int // Initiation interval for pipelined loops.
}

// takeIntrinsic claims the pending directive intrinsic, if any.
func (t *Translator) takeIntrinsic() *ast.CallExpr {
	call := t.pendingIntrinsic
	t.pendingIntrinsic = nil
	return call
}

// genLoop lowers one for statement according to its resolved directive.
func (t *Translator) genLoop(s *ast.ForStmt) error {
	intr := t.takeIntrinsic()
	p := t.pragmas.ForLine(t.pos(s).Line)
	if intr != nil && p.Kind != pragma.None {
		return t.wrapf(ErrAmbiguousDirective, s, "%s pragma at %s", p.Kind, p.Pos)
	}
	if s.Cond != nil && t.constFalse(s.Cond) {
		t.log.Debugf("%s %s: loop condition is constant false, nothing to lower",
			t.log.Module(), t.pos(s))
		return nil
	}
	d, err := t.resolveDirective(s, intr, p)
	if err != nil {
		return err
	}
	switch d.kind {
	case pragma.Unroll:
		return t.genUnrolledLoop(s)
	case pragma.InitInterval:
		return t.genPipelinedLoop(s, d.ii)
	}
	assertf(false, "unresolved loop directive %v", d.kind)
	return nil
}

// resolveDirective decides how a loop is lowered. An intrinsic
// immediately before the loop and a pragma on the loop are mutually
// exclusive. A loop with no directive of its own is unrolled when the
// default-unroll policy is active, and only otherwise inherits the
// interval of an enclosing pipelined body.
func (t *Translator) resolveDirective(s *ast.ForStmt, intr *ast.CallExpr, p pragma.Pragma) (directive, error) {
	if intr != nil {
		name, _ := hlsCall(intr)
		switch name {
		case "Unroll":
			if len(intr.Args) != 0 {
				return directive{}, t.errorf(intr, "hls.Unroll takes no arguments")
			}
			return directive{kind: pragma.Unroll}, nil
		case "Pipeline":
			if len(intr.Args) != 1 {
				return directive{}, t.errorf(intr, "hls.Pipeline takes one argument")
			}
			ii, ok := t.constInt64(intr.Args[0])
			if !ok {
				return directive{}, t.errorf(intr, "hls.Pipeline interval must be a constant")
			}
			if ii < 1 {
				return directive{}, t.wrapf(ErrBadInterval, intr, "ii=%d", ii)
			}
			return directive{kind: pragma.InitInterval, ii: int(ii)}, nil
		}
		assertf(false, "unexpected loop intrinsic")
	}
	switch p.Kind {
	case pragma.Unroll:
		return directive{kind: pragma.Unroll}, nil
	case pragma.InitInterval:
		if p.Arg < 1 {
			return directive{}, t.wrapf(ErrBadInterval, s, "ii=%d at %s", p.Arg, p.Pos)
		}
		return directive{kind: pragma.InitInterval, ii: p.Arg}, nil
	}
	if t.cfg.DefaultUnroll {
		return directive{kind: pragma.Unroll}, nil
	}
	if ii := t.ctx().OuterII; ii > 0 {
		return directive{kind: pragma.InitInterval, ii: ii}, nil
	}
	return directive{}, t.wrapf(ErrNoDirective, s, "loop")
}
