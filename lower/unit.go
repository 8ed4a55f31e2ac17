package lower

import (
	"sort"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

// A Chan is a channel endpoint scoped to one code-generation unit.
//
// The same package channel appears as a distinct Chan in every unit that
// can reach it; alias leaves refer to the unit-scoped endpoint, so
// aliases crossing a unit boundary are rewritten endpoint for endpoint.
type Chan struct {
	IR        *ir.Channel
	Generated bool // Created by lowering itself (context channels).
}

// UniqName implements value.Endpoint.
func (c *Chan) UniqName() string { return c.IR.Name }

// A Static is one proc-local persistent slot of a unit. Its current
// value enters the unit function as a parameter, travels out through an
// agreed extra return slot, and lands in proc state.
type Static struct {
	Name string // Slot name.
	Var  string // Source variable backed by the slot.
	Init *ir.Node
	Val  value.Value // Current-activation value (a parameter read).
}

// A Unit is one independently scoped code-generation target: the
// function under construction together with its channel endpoints,
// statics, and any pipelined-loop sub-procs queued for later
// compilation.
type Unit struct {
	Name     string
	FB       *ir.FuncBuilder
	Channels []*Chan
	Statics  []*Static
	SubProcs []*SubProc

	UsesOnReset bool

	// Built and RetCount are set once the unit is finalised; the return
	// slot layout is part of the contract with the enclosing proc.
	Built    *ir.Function
	RetCount int

	// Bindings is the final variable environment of an entry unit,
	// captured for callers after lowering completes.
	Bindings map[string]value.Value
}

// Builder implements genctx.Emitter.
func (u *Unit) Builder() ir.Builder { return u.FB }

// AddChan registers a unit-scoped endpoint.
func (u *Unit) AddChan(c *Chan) { u.Channels = append(u.Channels, c) }

// StaticsOrdered returns the unit's statics in deterministic name order.
// Return slots and proc state slots both follow this order.
func (u *Unit) StaticsOrdered() []*Static {
	out := make([]*Static, len(u.Statics))
	copy(out, u.Statics)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
