// Package solve provides the decision oracle that bounds loop unrolling.
//
// The oracle answers one kind of query: must this boolean wire equal a
// given constant. The Folder implementation decides by structural
// constant folding over the node dag, which is sound but deliberately
// incomplete: anything reaching a parameter, state read or invoke is
// unknown, and unknown never terminates unrolling (the iteration cap
// does).
package solve

import (
	"github.com/pkg/errors"

	"github.com/gohls/looplower/ir"
)

// Oracle answers whether a 1-bit value must equal a constant.
type Oracle interface {
	MustBe(n *ir.Node, want bool) (bool, error)
}

// Folder is a constant-folding Oracle.
type Folder struct{}

// NewFolder returns a folding oracle.
func NewFolder() *Folder { return &Folder{} }

// MustBe reports whether n provably equals want.
func (f *Folder) MustBe(n *ir.Node, want bool) (bool, error) {
	if n == nil {
		return false, errors.New("solve: query on nil node")
	}
	v, known := fold(n, make(map[*ir.Node]result))
	if !known {
		return false, nil
	}
	return (v != 0) == want, nil
}

// Eval folds n to a constant, reporting whether the value is known.
func (f *Folder) Eval(n *ir.Node) (uint64, bool) {
	if n == nil {
		return 0, false
	}
	return fold(n, make(map[*ir.Node]result))
}

type result struct {
	val   uint64
	known bool
}

func fold(n *ir.Node, memo map[*ir.Node]result) (uint64, bool) {
	if r, ok := memo[n]; ok {
		return r.val, r.known
	}
	v, known := foldUncached(n, memo)
	memo[n] = result{val: v, known: known}
	return v, known
}

func foldUncached(n *ir.Node, memo map[*ir.Node]result) (uint64, bool) {
	width := 64
	if bt, ok := n.Type.(*ir.BitsType); ok {
		width = bt.W
	}
	switch n.Op {
	case ir.OpLiteral:
		return truncate(n.Bits, width), true

	case ir.OpParam, ir.OpStateRead, ir.OpInvoke:
		return 0, false

	case ir.OpNot:
		x, ok := fold(n.Args[0], memo)
		if !ok {
			return 0, false
		}
		return truncate(^x, width), true

	case ir.OpAnd:
		// A single known-false operand decides the conjunction even
		// when the rest is unknown.
		x, xok := fold(n.Args[0], memo)
		y, yok := fold(n.Args[1], memo)
		if width == 1 {
			if xok && x == 0 || yok && y == 0 {
				return 0, true
			}
		}
		if xok && yok {
			return truncate(x&y, width), true
		}
		return 0, false

	case ir.OpOr:
		x, xok := fold(n.Args[0], memo)
		y, yok := fold(n.Args[1], memo)
		if width == 1 {
			if xok && x != 0 || yok && y != 0 {
				return 1, true
			}
		}
		if xok && yok {
			return truncate(x|y, width), true
		}
		return 0, false

	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		x, xok := fold(n.Args[0], memo)
		y, yok := fold(n.Args[1], memo)
		if !xok || !yok {
			return 0, false
		}
		aw := 64
		if bt, ok := n.Args[0].Type.(*ir.BitsType); ok {
			aw = bt.W
		}
		sx, sy := signed(x, aw), signed(y, aw)
		var b bool
		switch n.Op {
		case ir.OpEq:
			b = sx == sy
		case ir.OpNe:
			b = sx != sy
		case ir.OpLt:
			b = sx < sy
		case ir.OpLe:
			b = sx <= sy
		case ir.OpGt:
			b = sx > sy
		case ir.OpGe:
			b = sx >= sy
		}
		if b {
			return 1, true
		}
		return 0, true

	case ir.OpAdd, ir.OpSub, ir.OpMul:
		x, xok := fold(n.Args[0], memo)
		y, yok := fold(n.Args[1], memo)
		if !xok || !yok {
			return 0, false
		}
		switch n.Op {
		case ir.OpAdd:
			return truncate(x+y, width), true
		case ir.OpSub:
			return truncate(x-y, width), true
		default:
			return truncate(x*y, width), true
		}

	case ir.OpSelect:
		c, cok := fold(n.Args[0], memo)
		if cok {
			if c != 0 {
				return fold(n.Args[1], memo)
			}
			return fold(n.Args[2], memo)
		}
		t, tok := fold(n.Args[1], memo)
		f, fok := fold(n.Args[2], memo)
		if tok && fok && t == f {
			return t, true
		}
		return 0, false

	case ir.OpTupleIndex:
		tup := n.Args[0]
		if tup.Op == ir.OpTuple {
			return fold(tup.Args[n.Index], memo)
		}
		return 0, false

	case ir.OpTuple:
		return 0, false
	}
	return 0, false
}

func truncate(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & (1<<uint(width) - 1)
}

func signed(v uint64, width int) int64 {
	if width >= 64 {
		return int64(v)
	}
	if v&(1<<uint(width-1)) != 0 {
		return int64(v | ^uint64(1<<uint(width)-1))
	}
	return int64(v)
}
