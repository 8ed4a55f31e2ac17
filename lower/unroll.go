package lower

import (
	"go/ast"
	"time"
)

// genUnrolledLoop flattens a loop by lowering its body repeatedly until
// the loop-relative path condition is provably false. Each iteration's
// operations are guarded by the conjunction of all condition checks so
// far, so the flattened result computes exactly the values the loop
// would.
func (t *Translator) genUnrolledLoop(s *ast.ForStmt) error {
	// The loop owns a private scope: init-clause variables live exactly
	// as long as the loop, and break/continue conditions accumulated
	// here never reach the enclosing statement.
	lg := t.stack.Guard()
	defer lg.Release()
	lc := lg.Ctx()
	lc.RelCond = nil
	lc.PropagateBreakUp = false
	lc.PropagateContinueUp = false

	if s.Init != nil {
		if err := t.genStmt(s.Init); err != nil {
			return err
		}
	}

	// Body statements are lowered once per iteration; the duplicate
	// declaration detector must see each copy as fresh.
	savedIDs := t.snapshotDeclIDs()

	var iters int64
	var worst time.Duration
	for {
		start := time.Now()
		t.restoreDeclIDs(savedIDs)

		// Condition check happens outside the body guard: the condition
		// expression itself is evaluated whether or not this iteration
		// runs, and narrows everything downstream.
		if s.Cond != nil {
			cv, err := t.genExpr(s.Cond)
			if err != nil {
				return err
			}
			cond, err := t.requireBool(cv, s.Cond)
			if err != nil {
				return err
			}
			lc.AndCondition(cond)
		}

		// Unrolling terminates when no execution can reach the next
		// iteration. The cap above backstops an oracle that cannot
		// prove it.
		done, err := t.oracle.MustBe(lc.RelCondBit(), false)
		if err != nil {
			return t.wrapf(err, s, "loop condition oracle")
		}
		if done {
			break
		}
		if iters >= t.cfg.MaxUnrollIters {
			return t.wrapf(ErrUnrollLimit, s, "after %d iterations", iters)
		}
		if iters == t.cfg.WarnUnrollIters {
			t.log.Warnf("%s %s: unrolled %d iterations and still going",
				t.log.Module(), t.pos(s), iters)
		}

		bg := t.stack.Guard()
		bc := bg.Ctx()
		bc.InForBody = true
		bc.RelCond = nil
		bc.PropagateContinueUp = false
		err = t.genBlock(s.Body.List)
		bg.Release()
		if err != nil {
			return err
		}

		// The post statement sits outside the body guard so a continue
		// does not skip it.
		if s.Post != nil {
			if err := t.genStmt(s.Post); err != nil {
				return err
			}
		}

		if d := time.Since(start); d > worst {
			worst = d
			if d > t.cfg.SlowIterWarn {
				t.log.Warnf("%s %s: iteration %d took %v to lower",
					t.log.Module(), t.pos(s), iters, d)
			}
		}
		iters++
	}
	t.log.Debugf("%s %s: unrolled %d iterations", t.log.Module(), t.pos(s), iters)
	return nil
}
