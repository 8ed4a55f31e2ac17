package lower

import (
	"go/ast"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

// A SubProc is one pipelined loop hoisted out of its enclosing unit: the
// body function computing a single iteration, the context channel pair
// connecting it to the enclosing flow, and everything the proc glue
// needs to drive it.
type SubProc struct {
	Name string
	II   int

	Body   *ir.Function
	Packed *packedContext

	CtxIn  *ir.Channel // Enclosing unit -> loop proc.
	CtxOut *ir.Channel // Loop proc -> enclosing unit.

	Statics     []*Static
	Changed     []string // Variables the body reassigns, in packed order.
	UsesOnReset bool
}

// bodyExtraReturns is the number of return slots preceding the statics
// in a body function's return tuple: the result context and the break
// bit.
const bodyExtraReturns = 2

// genPipelinedLoopBody compiles one iteration of a pipelined loop into
// its own function. The body runs in an isolated unit: its variable
// environment is rebuilt from the packed context parameters, and its
// channel endpoints are fresh per-unit views of the same package
// channels.
//
// Return layout: (result context, break bit, statics in slot-name order,
// one slot per channel operation). A send's slot carries (payload,
// predicate); a receive's slot carries its predicate.
func (t *Translator) genPipelinedLoopBody(s *ast.ForStmt, pc *packedContext, prefix string, ii int) (*SubProc, error) {
	outer := t.unit()
	u := &Unit{Name: prefix + "_body", FB: ir.NewFunc(prefix+"_body", t.pkg)}
	chanMap := make(map[value.Endpoint]value.Endpoint)
	for _, c := range outer.Channels {
		if c.Generated {
			continue
		}
		inner := &Chan{IR: c.IR}
		u.AddChan(inner)
		chanMap[c] = inner
	}

	g := t.stack.FreshGuard(u)
	defer g.Release()
	ctx := g.Ctx()
	ctx.InForBody = true
	ctx.InPipelinedBody = true
	ctx.OuterII = ii

	structP := u.FB.Param(prefix+"_context_vars", pc.structTy)
	condsP := u.FB.Param(prefix+"_context_lvals", pc.condsTy)
	onResetP := u.FB.Param(prefix+"_on_reset", ir.Bits(1))

	// The routed on-reset bit shadows the enclosing unit's; hls.OnReset
	// inside the body sees this one.
	if err := ctx.Declare(onResetVar, value.Make(onResetP, value.Bool())); err != nil {
		return nil, t.wrapf(err, s, "loop body environment")
	}
	env := pc.unpack(u.FB, structP, condsP, chanMap)
	for _, name := range pc.order {
		if err := ctx.Declare(name, env[name]); err != nil {
			return nil, t.wrapf(err, s, "loop body environment")
		}
	}

	// One activation is one iteration, do-while style: the body runs
	// first, then the post statement under not-broken, then the exit
	// test for the next iteration. Whether the first iteration runs at
	// all is decided on the enclosing side, so operations at the top of
	// the body stay unconditional.
	bg := t.stack.Guard()
	bc := bg.Ctx()
	bc.RelCond = nil
	bc.PropagateContinueUp = false
	err := t.genBlock(s.Body.List)
	// Static variables are scoped to the body frame; their final values
	// must be captured before the frame pops.
	staticFinal := make(map[string]value.Value)
	if err == nil {
		for _, st := range u.Statics {
			if v, ok := bc.Get(st.Var); ok {
				staticFinal[st.Var] = v
			}
		}
	}
	bg.Release()
	if err != nil {
		return nil, err
	}

	if s.Post != nil {
		if err := t.genStmt(s.Post); err != nil {
			return nil, err
		}
	}

	if s.Cond != nil {
		cv, err := t.genExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		cond, err := t.requireBool(cv, s.Cond)
		if err != nil {
			return nil, err
		}
		ctx.OrIntoBreak(u.FB.Not(cond))
	}

	doBreak := ctx.RelBreakCond
	if doBreak == nil {
		doBreak = u.FB.Literal(0, 1)
	}

	// Repack the final environment. The outbound layout must match the
	// inbound one; a body that reshapes an alias tree cannot round-trip
	// through the fixed-width context channel.
	var data []*ir.Node
	for _, name := range pc.order {
		if _, ok := pc.fieldIndex[name]; !ok {
			continue
		}
		v, _ := ctx.Get(name)
		data = append(data, v.Node())
	}
	conds, ok := pc.repackConds(ctx)
	if !ok {
		return nil, t.wrapf(ErrUnimplemented, s, "loop body changes the shape of a conditional reference")
	}
	resultCtx := u.FB.Tuple(u.FB.Tuple(data...), u.FB.Tuple(conds...))
	if !resultCtx.Type.Equal(pc.outTy) {
		return nil, t.wrapf(ErrUnimplemented, s, "loop body changes the type of a captured variable")
	}

	rets := []*ir.Node{resultCtx, doBreak}
	for _, st := range u.StaticsOrdered() {
		v, ok := staticFinal[st.Var]
		if !ok {
			return nil, t.wrapf(ErrUnimplemented, s, "static %s declared in a nested scope", st.Var)
		}
		rets = append(rets, v.Node())
	}
	for _, op := range u.FB.IOOps() {
		if op.Kind == ir.SendOp {
			rets = append(rets, u.FB.Tuple(op.Payload, op.Pred))
		} else {
			rets = append(rets, op.Pred)
		}
	}
	built, err := u.FB.BuildWithReturnValue(u.FB.Tuple(rets...))
	if err != nil {
		return nil, t.wrapf(err, s, "loop body")
	}
	u.Built = built
	u.RetCount = len(rets)

	var changed []string
	for _, name := range pc.order {
		v, _ := ctx.Get(name)
		if !v.Same(env[name]) {
			changed = append(changed, name)
		}
	}

	sp := &SubProc{
		Name:        prefix,
		II:          ii,
		Body:        built,
		Packed:      pc,
		Statics:     u.StaticsOrdered(),
		Changed:     changed,
		UsesOnReset: u.UsesOnReset,
	}
	outer.SubProcs = append(outer.SubProcs, sp)
	return sp, nil
}
