package ir

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// A Package owns the channels, functions and procs produced by one
// lowering run.
type Package struct {
	Name     string
	Channels []*Channel
	Funcs    []*Function
	Procs    []*Proc

	chanNames map[string]bool
}

// NewPackage returns an empty package named name.
func NewPackage(name string) *Package {
	return &Package{Name: name, chanNames: make(map[string]bool)}
}

// NewStreamChannel creates a streaming channel in the package. Channel
// names are unique within a package.
func (p *Package) NewStreamChannel(name string, elem Type, depth int, flow FlowControl) (*Channel, error) {
	if p.chanNames[name] {
		return nil, errors.Errorf("ir: duplicate channel name %q", name)
	}
	p.chanNames[name] = true
	c := &Channel{Name: name, Elem: elem, Depth: depth, Flow: flow}
	p.Channels = append(p.Channels, c)
	return c, nil
}

// Channel looks up a channel by name, or nil.
func (p *Package) Channel(name string) *Channel {
	for _, c := range p.Channels {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (p *Package) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %s\n", p.Name)
	for _, c := range p.Channels {
		fmt.Fprintf(&buf, "%s\n", c)
	}
	for _, f := range p.Funcs {
		fmt.Fprintf(&buf, "fn %s(", f.Name)
		for i, pa := range f.Params {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s: %s", pa.Name, pa.Type)
		}
		fmt.Fprintf(&buf, ") -> %s\n", f.ReturnType())
		for _, op := range f.IOOps {
			fmt.Fprintf(&buf, "  io %s %s if %s\n", op.Kind, op.Chan.Name, op.Pred)
		}
		fmt.Fprintf(&buf, "  ret %s\n", f.Return)
	}
	for _, pr := range p.Procs {
		fmt.Fprintf(&buf, "proc %s\n", pr.Name)
		for i, s := range pr.States {
			fmt.Fprintf(&buf, "  state %s init %s next %s\n", s.Name, s.Init, pr.Next[i])
		}
		for _, op := range pr.Recvs {
			fmt.Fprintf(&buf, "  recv %s if %s\n", op.Chan.Name, op.Pred)
		}
		for _, op := range pr.Sends {
			fmt.Fprintf(&buf, "  send %s if %s\n", op.Chan.Name, op.Pred)
		}
	}
	return buf.String()
}
