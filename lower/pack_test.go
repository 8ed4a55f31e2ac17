package lower

import (
	"testing"

	"github.com/gohls/looplower/genctx"
	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

func TestPackRejectsEndpointlessReference(t *testing.T) {
	pkg := ir.NewPackage("test")
	u := &Unit{Name: "f", FB: ir.NewFunc("f", pkg)}
	tr := &Translator{pkg: pkg, log: NewNopLogger()}
	tr.stack = genctx.NewStack(genctx.New(u))
	ctx := tr.stack.Current()

	// A leaf with no endpoint cannot be reconstructed on the far side
	// of a context channel.
	bad := value.MakeAlias(&value.ChanType{Elem: value.Int()}, value.NewLeaf(nil))
	if err := ctx.Declare("c", bad); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	_, err := tr.packContext(ctx, u.FB.Literal(1, 1))
	if err == nil {
		t.Fatal("endpoint-less reference accepted at the loop boundary")
	}
	if !IsNotImplemented(err) {
		t.Errorf("error is not the unimplemented class: %v", err)
	}
}
