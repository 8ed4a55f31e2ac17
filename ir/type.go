// Package ir defines the wire-level representation that loop lowering
// emits into.
//
// The representation is deliberately small: values are bit vectors and
// tuples of bit vectors, operations are nodes in a dag owned by a builder,
// and processes communicate over point-to-point streaming channels. Node
// kinds form a closed set (Op) and consumers switch over them
// exhaustively.
package ir

import (
	"bytes"
	"fmt"
)

// Type is a wire-level datatype.
//
// A Type describes the shape of a value on a wire: either a plain bit
// vector or a tuple of nested types.
type Type interface {
	BitCount() int     // Total number of bits.
	Equal(Type) bool   // Structural equality.
	String() string    // Description of the type.
}

// BitsType is a plain bit vector of a fixed width.
type BitsType struct {
	W int
}

// Bits returns the bit vector type of width w.
func Bits(w int) *BitsType { return &BitsType{W: w} }

func (t *BitsType) BitCount() int { return t.W }

func (t *BitsType) Equal(u Type) bool {
	b, ok := u.(*BitsType)
	return ok && b.W == t.W
}

func (t *BitsType) String() string { return fmt.Sprintf("bits[%d]", t.W) }

// TupleType is an ordered collection of nested types.
type TupleType struct {
	Elems []Type
}

// TupleOf returns the tuple type with the given element types.
func TupleOf(elems ...Type) *TupleType { return &TupleType{Elems: elems} }

func (t *TupleType) BitCount() int {
	n := 0
	for _, e := range t.Elems {
		n += e.BitCount()
	}
	return n
}

func (t *TupleType) Equal(u Type) bool {
	tup, ok := u.(*TupleType)
	if !ok || len(tup.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equal(tup.Elems[i]) {
			return false
		}
	}
	return true
}

func (t *TupleType) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	for i, e := range t.Elems {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteString(")")
	return buf.String()
}
