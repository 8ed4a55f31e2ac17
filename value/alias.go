package value

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gohls/looplower/ir"
)

// An Endpoint is the storage an alias leaf refers to, typically a
// communication channel scoped to one code-generation unit.
type Endpoint interface {
	UniqName() string
}

// AliasKind enumerates the shapes of an alias tree.
type AliasKind int

const (
	Leaf AliasKind = iota
	Compound
	SelectAlias
)

// An Alias describes which underlying storage a value refers to.
//
// The three shapes form a closed set:
//
//   - Leaf: a single endpoint.
//   - Compound: an ordered mapping from field index to nested alias,
//     for struct shaped references.
//   - SelectAlias: the referent depends on a runtime condition; Cond
//     selects between True and False subtrees.
//
// Consumers switch over Kind exhaustively.
type Alias struct {
	Kind AliasKind

	Chan Endpoint // Leaf.

	Fields map[int]*Alias // Compound.

	Cond        *ir.Node // SelectAlias.
	True, False *Alias
}

// NewLeaf returns a leaf alias to ep.
func NewLeaf(ep Endpoint) *Alias { return &Alias{Kind: Leaf, Chan: ep} }

// NewCompound returns a compound alias over fields.
func NewCompound(fields map[int]*Alias) *Alias {
	return &Alias{Kind: Compound, Fields: fields}
}

// NewSelect returns an alias selecting between onTrue and onFalse by
// cond.
func NewSelect(cond *ir.Node, onTrue, onFalse *Alias) *Alias {
	return &Alias{Kind: SelectAlias, Cond: cond, True: onTrue, False: onFalse}
}

// FieldIndices returns the compound field indices in increasing order.
// Deterministic iteration order matters wherever an alias is walked.
func (a *Alias) FieldIndices() []int {
	idx := make([]int, 0, len(a.Fields))
	for i := range a.Fields {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Equal reports structural equality. Select conditions compare by node
// identity: the same wire, not merely the same shape.
func (a *Alias) Equal(b *Alias) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Leaf:
		return a.Chan == b.Chan
	case Compound:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i, f := range a.Fields {
			if !f.Equal(b.Fields[i]) {
				return false
			}
		}
		return true
	case SelectAlias:
		return a.Cond == b.Cond && a.True.Equal(b.True) && a.False.Equal(b.False)
	}
	return false
}

// ChannelsOnly reports whether the alias tree bottoms out exclusively in
// endpoints, with no empty shapes.
func (a *Alias) ChannelsOnly() bool {
	if a == nil {
		return true
	}
	switch a.Kind {
	case Leaf:
		return a.Chan != nil
	case Compound:
		if len(a.Fields) == 0 {
			return false
		}
		for _, f := range a.Fields {
			if !f.ChannelsOnly() {
				return false
			}
		}
		return true
	case SelectAlias:
		return a.True.ChannelsOnly() && a.False.ChannelsOnly()
	}
	return false
}

func (a *Alias) String() string {
	if a == nil {
		return "<nil>"
	}
	switch a.Kind {
	case Leaf:
		if a.Chan == nil {
			return "leaf(<nil>)"
		}
		return fmt.Sprintf("leaf(%s)", a.Chan.UniqName())
	case Compound:
		var buf bytes.Buffer
		buf.WriteString("compound{")
		for n, i := range a.FieldIndices() {
			if n > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%d: %s", i, a.Fields[i])
		}
		buf.WriteString("}")
		return buf.String()
	case SelectAlias:
		return fmt.Sprintf("sel(%s ? %s : %s)", a.Cond, a.True, a.False)
	}
	return "alias(?)"
}
