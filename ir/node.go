package ir

import (
	"bytes"
	"fmt"
)

// Op enumerates the node kinds of the representation.
//
// The set is closed: code consuming nodes switches over Op exhaustively
// rather than dispatching through an interface hierarchy.
type Op int

const (
	OpInvalid Op = iota
	OpLiteral
	OpParam
	OpStateRead
	OpNot
	OpAnd
	OpOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpSelect
	OpTuple
	OpTupleIndex
	OpInvoke
)

var opNames = [...]string{
	OpInvalid:    "invalid",
	OpLiteral:    "literal",
	OpParam:      "param",
	OpStateRead:  "state_read",
	OpNot:        "not",
	OpAnd:        "and",
	OpOr:         "or",
	OpEq:         "eq",
	OpNe:         "ne",
	OpLt:         "lt",
	OpLe:         "le",
	OpGt:         "gt",
	OpGe:         "ge",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpSelect:     "sel",
	OpTuple:      "tuple",
	OpTupleIndex: "tuple_index",
	OpInvoke:     "invoke",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// A Node is one operation in the dag under construction.
//
// Nodes are created exclusively through builder methods so every node
// belongs to exactly one function or proc under construction. Node
// identity (pointer) is significant: two structurally equal nodes built
// separately are distinct values on distinct wires.
type Node struct {
	Op   Op
	Type Type
	Args []*Node

	Bits  uint64    // OpLiteral payload (low word).
	Name  string    // OpParam/OpStateRead name.
	Index int       // OpTupleIndex element, OpParam position, OpStateRead slot.
	Func  *Function // OpInvoke target.
}

// IsLiteral reports whether n is a literal with the given low-word value.
func (n *Node) IsLiteral(bits uint64) bool {
	return n != nil && n.Op == OpLiteral && n.Bits == bits
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var buf bytes.Buffer
	switch n.Op {
	case OpLiteral:
		fmt.Fprintf(&buf, "%d:%s", n.Bits, n.Type)
	case OpParam:
		fmt.Fprintf(&buf, "%s:%s", n.Name, n.Type)
	case OpStateRead:
		fmt.Fprintf(&buf, "%s@%d:%s", n.Name, n.Index, n.Type)
	case OpTupleIndex:
		fmt.Fprintf(&buf, "%s(%s, %d)", n.Op, n.Args[0], n.Index)
	case OpInvoke:
		fmt.Fprintf(&buf, "invoke(%s", n.Func.Name)
		for _, a := range n.Args {
			fmt.Fprintf(&buf, ", %s", a)
		}
		buf.WriteString(")")
	default:
		fmt.Fprintf(&buf, "%s(", n.Op)
		for i, a := range n.Args {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(a.String())
		}
		buf.WriteString(")")
	}
	return buf.String()
}
