// Package value defines the source-level values carried through loop
// lowering: a wire-level data node paired with an optional alias tree
// describing which storage the value may refer to.
package value

import (
	"bytes"
	"fmt"

	"github.com/gohls/looplower/ir"
)

// Type is a source-level datatype.
//
// Wire returns the wire-level representation of the type, or nil for
// types with no own storage (channels exist only as alias trees).
type Type interface {
	Wire() ir.Type
	Equal(Type) bool
	String() string
}

// IntWidth is the bit width of the source int type.
const IntWidth = 32

// IntType is a signed integer.
type IntType struct {
	Width int
}

// Int returns the default-width integer type.
func Int() *IntType { return &IntType{Width: IntWidth} }

func (t *IntType) Wire() ir.Type { return ir.Bits(t.Width) }

func (t *IntType) Equal(u Type) bool {
	i, ok := u.(*IntType)
	return ok && i.Width == t.Width
}

func (t *IntType) String() string { return fmt.Sprintf("int%d", t.Width) }

// BoolType is a single bit boolean.
type BoolType struct{}

// Bool returns the boolean type.
func Bool() *BoolType { return &BoolType{} }

func (t *BoolType) Wire() ir.Type { return ir.Bits(1) }

func (t *BoolType) Equal(u Type) bool {
	_, ok := u.(*BoolType)
	return ok
}

func (t *BoolType) String() string { return "bool" }

// ChanType is a communication endpoint. It has no wire representation of
// its own; a channel-typed variable exists purely as an alias tree.
type ChanType struct {
	Elem Type
}

func (t *ChanType) Wire() ir.Type { return nil }

func (t *ChanType) Equal(u Type) bool {
	c, ok := u.(*ChanType)
	return ok && c.Elem.Equal(t.Elem)
}

func (t *ChanType) String() string { return fmt.Sprintf("chan %s", t.Elem) }

// Field is one named member of a StructType.
type Field struct {
	Name string
	Type Type
}

// StructType is an ordered record. Field order is significant and fixed
// at construction.
type StructType struct {
	Fields []Field
}

func (t *StructType) Wire() ir.Type {
	elems := make([]ir.Type, 0, len(t.Fields))
	for _, f := range t.Fields {
		if w := f.Type.Wire(); w != nil {
			elems = append(elems, w)
		}
	}
	return ir.TupleOf(elems...)
}

func (t *StructType) Equal(u Type) bool {
	s, ok := u.(*StructType)
	if !ok || len(s.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if s.Fields[i].Name != t.Fields[i].Name || !s.Fields[i].Type.Equal(t.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (t *StructType) String() string {
	var buf bytes.Buffer
	buf.WriteString("struct{")
	for i, f := range t.Fields {
		if i > 0 {
			buf.WriteString("; ")
		}
		fmt.Fprintf(&buf, "%s %s", f.Name, f.Type)
	}
	buf.WriteString("}")
	return buf.String()
}
