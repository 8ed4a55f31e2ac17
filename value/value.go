package value

import "github.com/gohls/looplower/ir"

// A Value pairs a wire-level data node with an optional alias tree.
//
// Either part may be absent: plain data has no alias tree, and a
// channel-typed value has no data node. The zero Value is invalid.
type Value struct {
	node  *ir.Node
	typ   Type
	alias *Alias
}

// Make returns a plain data value.
func Make(node *ir.Node, typ Type) Value {
	return Value{node: node, typ: typ}
}

// MakeAlias returns an alias-only value with no own storage.
func MakeAlias(typ Type, alias *Alias) Value {
	return Value{typ: typ, alias: alias}
}

// MakeWithAlias returns a value carrying both data and an alias tree.
func MakeWithAlias(node *ir.Node, typ Type, alias *Alias) Value {
	return Value{node: node, typ: typ, alias: alias}
}

// Node returns the data node, or nil for alias-only values.
func (v Value) Node() *ir.Node { return v.node }

// Type returns the source type.
func (v Value) Type() Type { return v.typ }

// Alias returns the alias tree, or nil.
func (v Value) Alias() *Alias { return v.alias }

// Valid reports whether the value carries anything at all.
func (v Value) Valid() bool { return v.node != nil || v.alias != nil }

// HasData reports whether the value has a wire-level representation.
func (v Value) HasData() bool { return v.node != nil }

// Same reports value identity: the same data node and the same alias
// structure. Two values built from identical expressions are not Same.
func (v Value) Same(u Value) bool {
	return v.node == u.node && v.alias.Equal(u.alias)
}

func (v Value) String() string {
	s := "value{"
	if v.node != nil {
		s += v.node.String()
	} else {
		s += "-"
	}
	if v.typ != nil {
		s += ": " + v.typ.String()
	}
	if v.alias != nil {
		s += " aka " + v.alias.String()
	}
	return s + "}"
}
