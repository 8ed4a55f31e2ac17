// Package genctx defines the translation context for code generation.
//
// A Context is the stack-scoped record of everything ambient to the
// operations currently being emitted: the path condition under which
// they are valid, break/continue accumulators, and the bindings of
// source variables to their current values. Entering a nested construct
// pushes a derived context; popping merges assignments back into the
// parent through conditional selects, so purely combinational hardware
// observes the same final bindings as the imperative source.
package genctx

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

var (
	ErrUndeclared = errors.New("assignment to undeclared variable")
	ErrRedeclared = errors.New("variable redeclared in the same scope")
)

// Emitter is the unit of code generation a context emits into.
type Emitter interface {
	Builder() ir.Builder
}

// A Context is one frame of the translation stack.
type Context struct {
	Emit Emitter

	// FullCond is the path condition relative to the unit entry; nil
	// means unconditional. RelCond is relative to this frame.
	FullCond *ir.Node
	RelCond  *ir.Node

	// RelBreakCond and RelContinueCond accumulate the conditions under
	// which a break or continue has fired within this frame.
	RelBreakCond    *ir.Node
	RelContinueCond *ir.Node

	// Propagation of assignments and of break/continue accumulators into
	// the parent frame on pop.
	PropagateUp         bool
	PropagateBreakUp    bool
	PropagateContinueUp bool

	InForBody       bool
	InPipelinedBody bool
	OuterII         int // Initiation interval inherited from an enclosing pipelined loop.

	vars     map[string]value.Value
	declared map[string]bool
	assigned map[string]bool
	parent   *Context
}

// New returns a root context emitting into e.
func New(e Emitter) *Context {
	return &Context{
		Emit:     e,
		vars:     make(map[string]value.Value),
		declared: make(map[string]bool),
		assigned: make(map[string]bool),
	}
}

// Declare binds name to v in this frame. Declaring a name already bound
// in this frame is an error; shadowing an outer frame is not.
func (c *Context) Declare(name string, v value.Value) error {
	if c.declared[name] {
		return errors.Wrap(ErrRedeclared, name)
	}
	c.vars[name] = v
	c.declared[name] = true
	return nil
}

// Assign rebinds name to v. The variable must be visible in this or an
// enclosing frame.
func (c *Context) Assign(name string, v value.Value) error {
	if _, ok := c.vars[name]; !ok {
		return errors.Wrap(ErrUndeclared, name)
	}
	c.vars[name] = v
	c.assigned[name] = true
	return nil
}

// Get returns the value bound to name.
func (c *Context) Get(name string) (value.Value, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Names returns all visible variable names in stable sorted order.
// Every site that packs or unpacks a loop context iterates variables in
// exactly this order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.vars))
	for n := range c.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AndCondition narrows the path condition by cond for the remainder of
// this frame.
func (c *Context) AndCondition(cond *ir.Node) {
	b := c.Emit.Builder()
	c.FullCond = andInto(b, c.FullCond, cond)
	c.RelCond = andInto(b, c.RelCond, cond)
}

// OrIntoBreak widens the break accumulator by cond.
func (c *Context) OrIntoBreak(cond *ir.Node) {
	c.RelBreakCond = orInto(c.Emit.Builder(), c.RelBreakCond, cond)
}

// OrIntoContinue widens the continue accumulator by cond.
func (c *Context) OrIntoContinue(cond *ir.Node) {
	c.RelContinueCond = orInto(c.Emit.Builder(), c.RelContinueCond, cond)
}

// RelCondBit returns the frame-relative path condition as a 1-bit node,
// materialising the constant true when unconditional.
func (c *Context) RelCondBit() *ir.Node {
	if c.RelCond == nil {
		return c.Emit.Builder().Literal(1, 1)
	}
	return c.RelCond
}

// FullCondBit returns the unit-relative path condition as a 1-bit node.
func (c *Context) FullCondBit() *ir.Node {
	if c.FullCond == nil {
		return c.Emit.Builder().Literal(1, 1)
	}
	return c.FullCond
}

func andInto(b ir.Builder, acc, cond *ir.Node) *ir.Node {
	if acc == nil {
		return cond
	}
	return b.And(acc, cond)
}

func orInto(b ir.Builder, acc, cond *ir.Node) *ir.Node {
	if acc == nil {
		return cond
	}
	return b.Or(acc, cond)
}
