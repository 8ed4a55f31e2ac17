package lower

import (
	"github.com/pkg/errors"

	"github.com/gohls/looplower/genctx"
	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

// A packedContext is the flattened form of the variable environment at a
// pipelined loop boundary, as carried on the loop's context channels.
//
// Layout of the inbound payload: (on-reset bit, variable struct, alias
// condition tuple). The outbound payload drops the on-reset bit. The
// variable struct holds one field per data-carrying variable in stable
// name order; the condition tuple holds every select condition of every
// alias tree, collected by one walk shared between encode and decode.
type packedContext struct {
	order      []string               // Packed variable names, sorted.
	vals       map[string]value.Value // Environment at the pack point.
	fieldIndex map[string]int         // Struct field per data variable.

	structTy ir.Type
	condsTy  *ir.TupleType
	inTy     ir.Type // (on_reset, struct, conds)
	outTy    ir.Type // (struct, conds)

	tuple *ir.Node // Inbound payload value at the pack point.
}

// packContext flattens the current environment around onReset. The
// on-reset pseudo-variable itself is never packed; every unit derives
// its own. Alias trees crossing the boundary must bottom out in channel
// endpoints, or the far side cannot reconstruct them.
func (t *Translator) packContext(ctx *genctx.Context, onReset *ir.Node) (*packedContext, error) {
	b := t.b()
	pc := &packedContext{
		vals:       make(map[string]value.Value),
		fieldIndex: make(map[string]int),
	}
	var data []*ir.Node
	var conds []*ir.Node
	for _, name := range ctx.Names() {
		if name == onResetVar {
			continue
		}
		v, _ := ctx.Get(name)
		if !v.Valid() {
			continue
		}
		if a := v.Alias(); a != nil && !a.ChannelsOnly() {
			return nil, errors.Wrapf(ErrUnimplemented, "reference %s does not resolve to channels", name)
		}
		pc.order = append(pc.order, name)
		pc.vals[name] = v
		if v.HasData() {
			pc.fieldIndex[name] = len(data)
			data = append(data, v.Node())
		}
		collectAliasConds(v.Alias(), &conds)
	}
	structVal := b.Tuple(data...)
	condsVal := b.Tuple(conds...)
	pc.structTy = structVal.Type
	pc.condsTy = condsVal.Type.(*ir.TupleType)
	pc.tuple = b.Tuple(onReset, structVal, condsVal)
	pc.inTy = pc.tuple.Type
	pc.outTy = ir.TupleOf(pc.structTy, pc.condsTy)
	return pc, nil
}

// collectAliasConds appends every select condition of a to out: compound
// fields in index order, and for a select its own condition followed by
// the true then the false subtree. Decoding replays the identical walk.
func collectAliasConds(a *value.Alias, out *[]*ir.Node) {
	if a == nil {
		return
	}
	switch a.Kind {
	case value.Leaf:
	case value.Compound:
		for _, i := range a.FieldIndices() {
			collectAliasConds(a.Fields[i], out)
		}
	case value.SelectAlias:
		*out = append(*out, a.Cond)
		collectAliasConds(a.True, out)
		collectAliasConds(a.False, out)
	default:
		assertf(false, "malformed alias kind %d", a.Kind)
	}
}

// unpack rebuilds the packed environment on the far side of a context
// channel. structVal and condsVal are the receiving unit's views of the
// two payload components; chanMap rewrites alias endpoints to the
// receiving unit's own, and may be nil for an in-place decode.
//
// One condition index runs across all variables, mirroring the encode
// walk exactly; a leftover or missing condition is a defect in the walk
// itself, not a user error.
func (pc *packedContext) unpack(b ir.Builder, structVal, condsVal *ir.Node, chanMap map[value.Endpoint]value.Endpoint) map[string]value.Value {
	at := 0
	out := make(map[string]value.Value, len(pc.order))
	for _, name := range pc.order {
		ov := pc.vals[name]
		var node *ir.Node
		if i, ok := pc.fieldIndex[name]; ok {
			node = b.TupleIndex(structVal, i)
		}
		alias := rebuildAlias(b, ov.Alias(), condsVal, &at, chanMap)
		out[name] = value.MakeWithAlias(node, ov.Type(), alias)
	}
	assertf(at == len(pc.condsTy.Elems),
		"alias condition tuple mismatch: decoded %d of %d", at, len(pc.condsTy.Elems))
	return out
}

// repackConds re-encodes the alias conditions of the final environment
// of a loop body, in packed order. The count must match the inbound
// layout; a body that changes an alias tree's shape would need a wider
// tuple than the channel carries.
func (pc *packedContext) repackConds(ctx *genctx.Context) ([]*ir.Node, bool) {
	var conds []*ir.Node
	for _, name := range pc.order {
		v, ok := ctx.Get(name)
		if !ok {
			v = pc.vals[name]
		}
		collectAliasConds(v.Alias(), &conds)
	}
	return conds, len(conds) == len(pc.condsTy.Elems)
}

func rebuildAlias(b ir.Builder, a *value.Alias, condsVal *ir.Node, at *int, chanMap map[value.Endpoint]value.Endpoint) *value.Alias {
	if a == nil {
		return nil
	}
	switch a.Kind {
	case value.Leaf:
		ep := a.Chan
		if m, ok := chanMap[ep]; ok {
			ep = m
		}
		return value.NewLeaf(ep)
	case value.Compound:
		fields := make(map[int]*value.Alias, len(a.Fields))
		for _, i := range a.FieldIndices() {
			fields[i] = rebuildAlias(b, a.Fields[i], condsVal, at, chanMap)
		}
		return value.NewCompound(fields)
	case value.SelectAlias:
		n := len(condsVal.Type.(*ir.TupleType).Elems)
		assertf(*at < n, "alias condition tuple too short: index %d of %d", *at, n)
		c := b.TupleIndex(condsVal, *at)
		*at++
		onTrue := rebuildAlias(b, a.True, condsVal, at, chanMap)
		onFalse := rebuildAlias(b, a.False, condsVal, at, chanMap)
		return value.NewSelect(c, onTrue, onFalse)
	}
	assertf(false, "malformed alias kind %d", a.Kind)
	return nil
}
