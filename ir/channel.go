package ir

import "fmt"

// FlowControl selects the handshake discipline of a streaming channel.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowReadyValid
)

func (fc FlowControl) String() string {
	switch fc {
	case FlowNone:
		return "none"
	case FlowReadyValid:
		return "ready_valid"
	}
	return fmt.Sprintf("flow(%d)", int(fc))
}

// A Channel is a point-to-point streaming channel between two procs.
//
// Depth is the FIFO depth; depth 0 means an unbuffered rendezvous. No
// state other than in-flight payloads crosses a channel.
type Channel struct {
	Name  string
	Elem  Type
	Depth int
	Flow  FlowControl
}

func (c *Channel) String() string {
	return fmt.Sprintf("chan %s %s depth=%d %s", c.Name, c.Elem, c.Depth, c.Flow)
}

// IOOpKind distinguishes sends from receives.
type IOOpKind int

const (
	RecvOp IOOpKind = iota
	SendOp
)

func (k IOOpKind) String() string {
	if k == RecvOp {
		return "recv"
	}
	return "send"
}

// An IOOp is one channel operation recorded on a unit under construction.
//
// For a send, Payload is the value sent and Pred the condition under
// which the send fires. For a receive, Result carries the received
// payload and Pred the condition under which data is consumed. After
// lists ops that must complete before this one ("happens-after" edges).
type IOOp struct {
	Kind    IOOpKind
	Chan    *Channel
	Pred    *Node
	Payload *Node // SendOp only.
	Result  *Node // RecvOp only.
	After   []*IOOp
}
