package value

import (
	"testing"

	"github.com/gohls/looplower/ir"
)

type testChan struct{ name string }

func (c *testChan) UniqName() string { return c.name }

func TestAliasEqual(t *testing.T) {
	a := &testChan{name: "a"}
	b := &testChan{name: "b"}
	cond := &ir.Node{Op: ir.OpParam, Type: ir.Bits(1), Name: "c"}

	if !NewLeaf(a).Equal(NewLeaf(a)) {
		t.Error("leaves of the same endpoint differ")
	}
	if NewLeaf(a).Equal(NewLeaf(b)) {
		t.Error("leaves of different endpoints compare equal")
	}
	s1 := NewSelect(cond, NewLeaf(a), NewLeaf(b))
	s2 := NewSelect(cond, NewLeaf(a), NewLeaf(b))
	if !s1.Equal(s2) {
		t.Error("structurally identical selects differ")
	}
	other := &ir.Node{Op: ir.OpParam, Type: ir.Bits(1), Name: "d"}
	if s1.Equal(NewSelect(other, NewLeaf(a), NewLeaf(b))) {
		t.Error("selects on different condition wires compare equal")
	}
}

func TestFieldIndices(t *testing.T) {
	a := &testChan{name: "a"}
	c := NewCompound(map[int]*Alias{2: NewLeaf(a), 0: NewLeaf(a), 5: NewLeaf(a)})
	idx := c.FieldIndices()
	want := []int{0, 2, 5}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("indices = %v, want %v", idx, want)
		}
	}
}

func TestChannelsOnly(t *testing.T) {
	a := &testChan{name: "a"}
	cond := &ir.Node{Op: ir.OpParam, Type: ir.Bits(1)}
	if !NewSelect(cond, NewLeaf(a), NewLeaf(a)).ChannelsOnly() {
		t.Error("select over leaves rejected")
	}
	if NewCompound(map[int]*Alias{}).ChannelsOnly() {
		t.Error("empty compound accepted")
	}
	if NewLeaf(nil).ChannelsOnly() {
		t.Error("endpoint-less leaf accepted")
	}
}

func TestValueSame(t *testing.T) {
	n := &ir.Node{Op: ir.OpLiteral, Type: ir.Bits(32), Bits: 1}
	m := &ir.Node{Op: ir.OpLiteral, Type: ir.Bits(32), Bits: 1}
	v := Make(n, Int())
	if !v.Same(Make(n, Int())) {
		t.Error("identical node not Same")
	}
	if v.Same(Make(m, Int())) {
		t.Error("distinct nodes with equal shape compare Same")
	}
	if !v.HasData() || Make(nil, Int()).HasData() {
		t.Error("HasData does not track the node")
	}
}
