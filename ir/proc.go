package ir

import "github.com/pkg/errors"

// A StateElement is one slot of persistent proc state.
type StateElement struct {
	Name string
	Init *Node // Literal (or tuple of literals) initial value.
	read *Node
}

// Read returns the node carrying the slot's current value.
func (s *StateElement) Read() *Node { return s.read }

// A Proc is a fully-built hardware process.
//
// On every activation a proc evaluates its node dag against the current
// state, performs its channel operations, and latches Next as the state
// for the following activation.
type Proc struct {
	Name   string
	States []*StateElement
	Sends  []*IOOp
	Recvs  []*IOOp
	Next   []*Node
}

// ProcBuilder constructs a Proc.
type ProcBuilder struct {
	core
	name   string
	pkg    *Package
	states []*StateElement
	sends  []*IOOp
	recvs  []*IOOp
}

// NewProc returns a builder for a proc named name in pkg.
func NewProc(name string, pkg *Package) *ProcBuilder {
	return &ProcBuilder{name: name, pkg: pkg}
}

func (pb *ProcBuilder) Name() string { return pb.name }

// StateElement declares the next persistent state slot with the given
// initial value, and returns the node reading its current value.
func (pb *ProcBuilder) StateElement(name string, init *Node) *Node {
	s := &StateElement{Name: name, Init: init}
	s.read = pb.add(&Node{Op: OpStateRead, Type: init.Type, Name: name, Index: len(pb.states)})
	pb.states = append(pb.states, s)
	return s.read
}

// ReceiveIf performs a receive on ch gated by pred. The returned op's
// Result carries the payload.
func (pb *ProcBuilder) ReceiveIf(ch *Channel, pred *Node) *IOOp {
	result := pb.add(&Node{Op: OpParam, Type: ch.Elem, Name: "__recv_" + ch.Name, Index: -1})
	op := &IOOp{Kind: RecvOp, Chan: ch, Pred: pred, Result: result}
	pb.recvs = append(pb.recvs, op)
	return op
}

// SendIf performs a send of payload on ch gated by pred.
func (pb *ProcBuilder) SendIf(ch *Channel, pred, payload *Node) *IOOp {
	op := &IOOp{Kind: SendOp, Chan: ch, Pred: pred, Payload: payload}
	pb.sends = append(pb.sends, op)
	return op
}

// Invoke creates a call to a previously built function.
func (pb *ProcBuilder) Invoke(f *Function, args ...*Node) (*Node, error) {
	return invoke(&pb.core, f, args...)
}

// Build finalises the proc with one next-state value per declared slot
// and registers it with the package.
func (pb *ProcBuilder) Build(next ...*Node) (*Proc, error) {
	if len(next) != len(pb.states) {
		return nil, errors.Errorf("ir: proc %s has %d state slots but %d next values",
			pb.name, len(pb.states), len(next))
	}
	for i, n := range next {
		if !n.Type.Equal(pb.states[i].Init.Type) {
			return nil, errors.Errorf("ir: proc %s next value %d has type %s, want %s",
				pb.name, i, n.Type, pb.states[i].Init.Type)
		}
	}
	p := &Proc{
		Name:   pb.name,
		States: pb.states,
		Sends:  pb.sends,
		Recvs:  pb.recvs,
		Next:   next,
	}
	pb.pkg.Procs = append(pb.pkg.Procs, p)
	return p, nil
}
