package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// Builder constructs nodes for a function or proc under construction.
//
// Both FuncBuilder and ProcBuilder implement Builder; code generation
// that only needs to create combinational operations accepts this
// interface and stays agnostic of what it is emitting into.
type Builder interface {
	Literal(bits uint64, width int) *Node
	Zero(t Type) *Node
	Not(x *Node) *Node
	And(x, y *Node) *Node
	Or(x, y *Node) *Node
	Eq(x, y *Node) *Node
	Ne(x, y *Node) *Node
	Lt(x, y *Node) *Node
	Le(x, y *Node) *Node
	Gt(x, y *Node) *Node
	Ge(x, y *Node) *Node
	Add(x, y *Node) *Node
	Sub(x, y *Node) *Node
	Mul(x, y *Node) *Node
	Select(cond, onTrue, onFalse *Node) *Node
	Tuple(elems ...*Node) *Node
	TupleIndex(tup *Node, i int) *Node
}

// core holds the node-construction machinery shared by FuncBuilder and
// ProcBuilder.
type core struct {
	nodes []*Node
}

func (b *core) add(n *Node) *Node {
	b.nodes = append(b.nodes, n)
	return n
}

func (b *core) Literal(bits uint64, width int) *Node {
	return b.add(&Node{Op: OpLiteral, Type: Bits(width), Bits: bits})
}

// Zero returns the default value of t: all-zero bits, recursively for
// tuples.
func (b *core) Zero(t Type) *Node {
	switch t := t.(type) {
	case *BitsType:
		return b.Literal(0, t.W)
	case *TupleType:
		elems := make([]*Node, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = b.Zero(e)
		}
		return b.Tuple(elems...)
	}
	panic(fmt.Sprintf("ir: Zero of unknown type %T", t))
}

func (b *core) unary(op Op, x *Node) *Node {
	return b.add(&Node{Op: op, Type: x.Type, Args: []*Node{x}})
}

func (b *core) binary(op Op, x, y *Node) *Node {
	return b.add(&Node{Op: op, Type: x.Type, Args: []*Node{x, y}})
}

func (b *core) compare(op Op, x, y *Node) *Node {
	return b.add(&Node{Op: op, Type: Bits(1), Args: []*Node{x, y}})
}

func (b *core) Not(x *Node) *Node    { return b.unary(OpNot, x) }
func (b *core) And(x, y *Node) *Node { return b.binary(OpAnd, x, y) }
func (b *core) Or(x, y *Node) *Node  { return b.binary(OpOr, x, y) }
func (b *core) Eq(x, y *Node) *Node  { return b.compare(OpEq, x, y) }
func (b *core) Ne(x, y *Node) *Node  { return b.compare(OpNe, x, y) }
func (b *core) Lt(x, y *Node) *Node  { return b.compare(OpLt, x, y) }
func (b *core) Le(x, y *Node) *Node  { return b.compare(OpLe, x, y) }
func (b *core) Gt(x, y *Node) *Node  { return b.compare(OpGt, x, y) }
func (b *core) Ge(x, y *Node) *Node  { return b.compare(OpGe, x, y) }
func (b *core) Add(x, y *Node) *Node { return b.binary(OpAdd, x, y) }
func (b *core) Sub(x, y *Node) *Node { return b.binary(OpSub, x, y) }
func (b *core) Mul(x, y *Node) *Node { return b.binary(OpMul, x, y) }

func (b *core) Select(cond, onTrue, onFalse *Node) *Node {
	return b.add(&Node{Op: OpSelect, Type: onTrue.Type, Args: []*Node{cond, onTrue, onFalse}})
}

func (b *core) Tuple(elems ...*Node) *Node {
	ts := make([]Type, len(elems))
	for i, e := range elems {
		ts[i] = e.Type
	}
	return b.add(&Node{Op: OpTuple, Type: TupleOf(ts...), Args: elems})
}

func (b *core) TupleIndex(tup *Node, i int) *Node {
	tt, ok := tup.Type.(*TupleType)
	if !ok {
		panic(fmt.Sprintf("ir: TupleIndex of non-tuple %s", tup.Type))
	}
	if i < 0 || i >= len(tt.Elems) {
		panic(fmt.Sprintf("ir: TupleIndex %d out of range of %s", i, tup.Type))
	}
	return b.add(&Node{Op: OpTupleIndex, Type: tt.Elems[i], Args: []*Node{tup}, Index: i})
}

// A Function is a fully-built combinational unit.
type Function struct {
	Name   string
	Params []*Node
	IOOps  []*IOOp
	Return *Node
}

// ReturnType returns the type of the function's return value.
func (f *Function) ReturnType() Type { return f.Return.Type }

// FuncBuilder constructs a Function.
//
// IO operations recorded on a FuncBuilder are not performed by the
// function itself; they describe sends and receives that an enclosing
// proc performs on the function's behalf, with payloads and predicates
// routed through extra parameter and return slots.
type FuncBuilder struct {
	core
	name   string
	pkg    *Package
	params []*Node
	ioOps  []*IOOp
}

// NewFunc returns a builder for a function named name in pkg.
func NewFunc(name string, pkg *Package) *FuncBuilder {
	return &FuncBuilder{name: name, pkg: pkg}
}

func (fb *FuncBuilder) Name() string { return fb.name }

// Param declares the next parameter of the function.
func (fb *FuncBuilder) Param(name string, t Type) *Node {
	p := fb.add(&Node{Op: OpParam, Type: t, Name: name, Index: len(fb.params)})
	fb.params = append(fb.params, p)
	return p
}

// Receive records a conditional receive on ch. The returned op's Result
// is a fresh parameter carrying the received payload.
func (fb *FuncBuilder) Receive(ch *Channel, pred *Node) *IOOp {
	result := fb.Param(fmt.Sprintf("__%s_recv%d", ch.Name, len(fb.ioOps)), ch.Elem)
	op := &IOOp{Kind: RecvOp, Chan: ch, Pred: pred, Result: result}
	fb.ioOps = append(fb.ioOps, op)
	return op
}

// Send records a conditional send of payload on ch.
func (fb *FuncBuilder) Send(ch *Channel, pred, payload *Node) *IOOp {
	op := &IOOp{Kind: SendOp, Chan: ch, Pred: pred, Payload: payload}
	fb.ioOps = append(fb.ioOps, op)
	return op
}

// IOOps returns the IO operations recorded so far, in program order.
func (fb *FuncBuilder) IOOps() []*IOOp { return fb.ioOps }

// BuildWithReturnValue finalises the function with ret as its return
// value and registers it with the package.
func (fb *FuncBuilder) BuildWithReturnValue(ret *Node) (*Function, error) {
	if ret == nil {
		return nil, errors.Errorf("ir: function %s built without return value", fb.name)
	}
	f := &Function{
		Name:   fb.name,
		Params: fb.params,
		IOOps:  fb.ioOps,
		Return: ret,
	}
	fb.pkg.Funcs = append(fb.pkg.Funcs, f)
	return f, nil
}

// Invoke creates a call to a previously built function.
func (fb *FuncBuilder) Invoke(f *Function, args ...*Node) (*Node, error) {
	return invoke(&fb.core, f, args...)
}

func invoke(b *core, f *Function, args ...*Node) (*Node, error) {
	if len(args) != len(f.Params) {
		return nil, errors.Errorf("ir: invoke %s with %d args, want %d",
			f.Name, len(args), len(f.Params))
	}
	for i, a := range args {
		if !a.Type.Equal(f.Params[i].Type) {
			return nil, errors.Errorf("ir: invoke %s arg %d has type %s, want %s",
				f.Name, i, a.Type, f.Params[i].Type)
		}
	}
	return b.add(&Node{Op: OpInvoke, Type: f.ReturnType(), Args: args, Func: f}), nil
}
