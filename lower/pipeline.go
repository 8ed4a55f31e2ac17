package lower

import (
	"fmt"
	"go/ast"

	"github.com/gohls/looplower/ir"
)

// genPipelinedLoop hoists a loop into its own process executing one
// iteration per activation at the given initiation interval.
//
// The enclosing unit packs its live variables into a context tuple,
// sends it to the loop proc, and receives the final context back once
// the loop breaks; only variables the body actually changes are rebound
// afterwards.
func (t *Translator) genPipelinedLoop(s *ast.ForStmt, ii int) error {
	// The init clause runs in the enclosing unit, in a scope private to
	// the loop, so loop-carried variables are packed along with
	// everything else live here.
	lg := t.stack.Guard()
	defer lg.Release()
	lc := lg.Ctx()
	lc.PropagateBreakUp = false
	lc.PropagateContinueUp = false
	if s.Init != nil {
		if err := t.genStmt(s.Init); err != nil {
			return err
		}
	}

	// The loop proc runs do-while; the first iteration's entry test
	// lives here, suppressing the whole context exchange when the
	// condition is false on entry.
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

	prefix := fmt.Sprintf("__for_%d", t.nextFor)
	t.nextFor++
	t.log.Debugf("%s %s: pipelining loop as %s with ii=%d",
		t.log.Module(), t.pos(s), prefix, ii)

	onReset := t.getOnReset()
	pc, err := t.packContext(lc, onReset.Node())
	if err != nil {
		return t.wrapf(err, s, "context pack")
	}

	u := t.unit()
	ctxIn, err := t.pkg.NewStreamChannel(prefix+"_ctx_in", pc.inTy, 0, ir.FlowReadyValid)
	if err != nil {
		return t.wrapf(err, s, "context channel")
	}
	ctxOut, err := t.pkg.NewStreamChannel(prefix+"_ctx_out", pc.outTy, 0, ir.FlowReadyValid)
	if err != nil {
		return t.wrapf(err, s, "context channel")
	}
	u.AddChan(&Chan{IR: ctxIn, Generated: true})
	u.AddChan(&Chan{IR: ctxOut, Generated: true})

	sp, err := t.genPipelinedLoopBody(s, pc, prefix, ii)
	if err != nil {
		return err
	}
	sp.CtxIn, sp.CtxOut = ctxIn, ctxOut

	// The enclosing flow blocks on the loop: send the context, then
	// wait for the final one. Both fire under the path condition.
	cond := lc.FullCondBit()
	sendOp := u.FB.Send(ctxIn, cond, pc.tuple)
	recvOp := u.FB.Receive(ctxOut, cond)
	recvOp.After = append(recvOp.After, sendOp)

	structBack := u.FB.TupleIndex(recvOp.Result, 0)
	condsBack := u.FB.TupleIndex(recvOp.Result, 1)
	env := pc.unpack(u.FB, structBack, condsBack, nil)
	for _, name := range sp.Changed {
		if err := t.assignVar(name, env[name], s); err != nil {
			return err
		}
	}

	return t.genPipelinedLoopProc(s, sp)
}
