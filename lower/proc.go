package lower

import (
	"go/ast"

	"github.com/gohls/looplower/ir"
)

// genPipelinedLoopProc builds the process driving one hoisted loop body.
//
// State layout: a first-tick flag, the retained alias conditions, one
// slot per data-carrying context variable, then the statics. On a first
// tick the proc receives a fresh context; otherwise it iterates on
// retained state. The body function computes one iteration; its break
// bit sends the final context back and re-arms the first-tick flag.
func (t *Translator) genPipelinedLoopProc(s *ast.ForStmt, sp *SubProc) error {
	pc := sp.Packed
	pb := ir.NewProc(sp.Name+"_proc", t.pkg)

	firstTick := pb.StateElement("__first_tick", pb.Literal(1, 1))
	lvals := pb.StateElement("__lvalue_conditions", pb.Zero(pc.condsTy))
	structTup := pc.structTy.(*ir.TupleType)
	varStates := make([]*ir.Node, len(structTup.Elems))
	fieldName := make([]string, len(structTup.Elems))
	for _, name := range pc.order {
		if i, ok := pc.fieldIndex[name]; ok {
			fieldName[i] = name
		}
	}
	for i, ty := range structTup.Elems {
		varStates[i] = pb.StateElement(fieldName[i], pb.Zero(ty))
	}
	staticReads := make(map[*ir.Node]*ir.Node, len(sp.Statics))
	for _, st := range sp.Statics {
		staticReads[st.Val.Node()] = pb.StateElement(st.Name, st.Init)
	}

	ctxRecv := pb.ReceiveIf(sp.CtxIn, firstTick)
	ctxVal := ctxRecv.Result
	recvOnReset := pb.TupleIndex(ctxVal, 0)
	recvStruct := pb.TupleIndex(ctxVal, 1)
	recvConds := pb.TupleIndex(ctxVal, 2)

	// Current-activation environment: freshly received on a first tick,
	// retained state on every later iteration.
	fields := make([]*ir.Node, len(varStates))
	for i := range varStates {
		fields[i] = pb.Select(firstTick, pb.TupleIndex(recvStruct, i), varStates[i])
	}
	structCur := pb.Tuple(fields...)
	condsCur := pb.Select(firstTick, recvConds, lvals)

	// A body that never reads the reset bit gets it grounded; the
	// inbound slot always carries the live bit to keep the layout fixed.
	onReset := pb.Literal(0, 1)
	if sp.UsesOnReset {
		onReset = pb.And(firstTick, recvOnReset)
	}

	// Channel operations recorded inside the body fire at this proc.
	// A receive must be routed before the body is invoked, so its
	// predicate cannot depend on the body's own computation.
	argFor := make(map[*ir.Node]*ir.Node)
	routed := make(map[*ir.IOOp]*ir.IOOp)
	for p, r := range staticReads {
		argFor[p] = r
	}
	for _, op := range sp.Body.IOOps {
		if op.Kind != ir.RecvOp {
			continue
		}
		if !op.Pred.IsLiteral(1) {
			return t.wrapf(ErrUnimplemented, s, "conditional receive inside a pipelined loop body")
		}
		recv := pb.ReceiveIf(op.Chan, pb.Literal(1, 1))
		argFor[op.Result] = recv.Result
		routed[op] = recv
	}

	args := []*ir.Node{structCur, condsCur, onReset}
	for _, p := range sp.Body.Params[3:] {
		a, ok := argFor[p]
		assertf(ok, "body parameter %s has no proc-level source", p.Name)
		args = append(args, a)
	}
	ret, err := pb.Invoke(sp.Body, args...)
	if err != nil {
		return t.wrapf(err, s, "invoke loop body")
	}

	resultCtx := pb.TupleIndex(ret, 0)
	doBreak := pb.TupleIndex(ret, 1)
	structNext := pb.TupleIndex(resultCtx, 0)

	slot := bodyExtraReturns + len(sp.Statics)
	for _, op := range sp.Body.IOOps {
		v := pb.TupleIndex(ret, slot)
		slot++
		if op.Kind != ir.SendOp {
			continue
		}
		routed[op] = pb.SendIf(op.Chan, pb.TupleIndex(v, 1), pb.TupleIndex(v, 0))
	}

	// Happens-after edges between body operations survive the routing:
	// a nested loop's context receive must keep trailing its send.
	for _, op := range sp.Body.IOOps {
		po := routed[op]
		if po == nil {
			continue
		}
		for _, dep := range op.After {
			if pd, ok := routed[dep]; ok {
				po.After = append(po.After, pd)
			}
		}
	}

	// The final context leaves when the loop breaks; the same bit
	// re-arms first-tick for the next invocation of the loop.
	pb.SendIf(sp.CtxOut, doBreak, resultCtx)

	// Retained conditions are the decoded active tuple, not the body's
	// repacked one; alias trees are fixed for the loop's lifetime.
	next := []*ir.Node{doBreak, condsCur}
	for i := range varStates {
		next = append(next, pb.TupleIndex(structNext, i))
	}
	for k := range sp.Statics {
		next = append(next, pb.TupleIndex(ret, bodyExtraReturns+k))
	}
	if _, err := pb.Build(next...); err != nil {
		return t.wrapf(err, s, "loop proc")
	}
	return nil
}
