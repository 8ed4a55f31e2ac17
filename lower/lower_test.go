package lower_test

import (
	"strings"
	"testing"

	"github.com/gohls/looplower/build"
	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/lower"
	"github.com/gohls/looplower/solve"
)

// lowerSrc lowers the main function of src and returns the unit and the
// produced package.
func lowerSrc(t *testing.T, src string, cfg lower.Config) (*lower.Unit, *ir.Package, error) {
	t.Helper()
	info, err := build.FromReader(strings.NewReader(src)).Default().Build()
	if err != nil {
		t.Fatalf("cannot parse source: %v", err)
	}
	file, fn := info.FindFunc("main")
	if fn == nil {
		t.Fatal("no main function in source")
	}
	tr, err := lower.New(info.FSet, file, cfg, solve.NewFolder())
	if err != nil {
		return nil, nil, err
	}
	unit, err := tr.LowerFunc(fn)
	return unit, tr.Package(), err
}

// evalBinding folds the final value of a named variable.
func evalBinding(t *testing.T, u *lower.Unit, name string) uint64 {
	t.Helper()
	v, ok := u.Bindings[name]
	if !ok {
		t.Fatalf("no binding for %s", name)
	}
	n, known := solve.NewFolder().Eval(v.Node())
	if !known {
		t.Fatalf("final value of %s is not constant", name)
	}
	return n
}

func TestUnrollSum(t *testing.T) {
	src := `package main

func main() {
	acc := 0
	//hls:unroll
	for i := 0; i < 5; i++ {
		acc = acc + i
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if got := evalBinding(t, u, "acc"); got != 10 {
		t.Errorf("acc = %d, want 10", got)
	}
	t.Logf("acc folds to %d after full unroll", 10)
}

func TestUnrollBreak(t *testing.T) {
	src := `package main

func main() {
	acc := 0
	//hls:unroll
	for i := 0; ; i++ {
		if i == 3 {
			break
		}
		acc = acc + 1
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if got := evalBinding(t, u, "acc"); got != 3 {
		t.Errorf("acc = %d, want 3", got)
	}
}

func TestUnrollContinue(t *testing.T) {
	src := `package main

func main() {
	acc := 0
	//hls:unroll
	for i := 0; i < 6; i++ {
		if i == 2 {
			continue
		}
		acc = acc + i
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	// 0+1+3+4+5; iteration 2 skips the accumulation but not the post.
	if got := evalBinding(t, u, "acc"); got != 13 {
		t.Errorf("acc = %d, want 13", got)
	}
}

func TestUnrollNested(t *testing.T) {
	src := `package main

func main() {
	acc := 0
	//hls:unroll
	for i := 0; i < 3; i++ {
		//hls:unroll
		for j := 0; j < 2; j++ {
			acc = acc + 1
		}
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if got := evalBinding(t, u, "acc"); got != 6 {
		t.Errorf("acc = %d, want 6", got)
	}
}

func TestUnrollLimit(t *testing.T) {
	src := `package main

func main() {
	x := 0
	//hls:unroll
	for i := 0; i < 100; i++ {
		x = x + 1
	}
}
`
	cfg := lower.DefaultConfig()
	cfg.MaxUnrollIters = 10
	_, _, err := lowerSrc(t, src, cfg)
	if err == nil {
		t.Fatal("expected unroll limit error")
	}
	if !lower.IsResourceExhausted(err) {
		t.Errorf("error is not resource exhaustion: %v", err)
	}
}

func TestConstFalseLoopElided(t *testing.T) {
	// No directive needed: a loop that never iterates is dropped before
	// directive resolution.
	src := `package main

func main() {
	x := 7
	for i := 0; false; i++ {
		x = 0
	}
}
`
	u, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if got := evalBinding(t, u, "x"); got != 7 {
		t.Errorf("x = %d, want 7", got)
	}
	if len(pkg.Procs) != 0 {
		t.Errorf("elided loop produced %d proc(s)", len(pkg.Procs))
	}
}

func TestNoDirective(t *testing.T) {
	src := `package main

func main() {
	x := 0
	for i := 0; i < 3; i++ {
		x = x + 1
	}
}
`
	_, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err == nil {
		t.Fatal("expected missing directive error")
	}
	if !lower.IsNotImplemented(err) {
		t.Errorf("error is not the missing-directive class: %v", err)
	}

	cfg := lower.DefaultConfig()
	cfg.DefaultUnroll = true
	u, _, err := lowerSrc(t, src, cfg)
	if err != nil {
		t.Fatalf("lowering with default unroll failed: %v", err)
	}
	if got := evalBinding(t, u, "x"); got != 3 {
		t.Errorf("x = %d, want 3", got)
	}
}

func TestDirectiveConflict(t *testing.T) {
	src := `package main

import "hls"

func main() {
	x := 0
	hls.Pipeline(1)
	//hls:unroll
	for i := 0; i < 2; i++ {
		x = x + 1
	}
}
`
	_, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err == nil {
		t.Fatal("expected ambiguous directive error")
	}
	if !lower.IsConfig(err) {
		t.Errorf("error is not a configuration error: %v", err)
	}
}

func TestBadInterval(t *testing.T) {
	for _, src := range []string{
		`package main

func main() {
	x := 0
	//hls:pipeline ii=0
	for i := 0; i < 2; i++ {
		x = x + 1
	}
}
`,
		`package main

import "hls"

func main() {
	x := 0
	hls.Pipeline(-1)
	for i := 0; i < 2; i++ {
		x = x + 1
	}
}
`,
	} {
		_, _, err := lowerSrc(t, src, lower.DefaultConfig())
		if err == nil {
			t.Fatal("expected bad interval error")
		}
		if !lower.IsConfig(err) {
			t.Errorf("error is not a configuration error: %v", err)
		}
	}
}

func TestIntrinsicUnroll(t *testing.T) {
	src := `package main

import "hls"

func main() {
	x := 0
	hls.Unroll()
	for i := 0; i < 4; i++ {
		x = x + 2
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if got := evalBinding(t, u, "x"); got != 8 {
		t.Errorf("x = %d, want 8", got)
	}
}

func TestStrandedIntrinsic(t *testing.T) {
	src := `package main

import "hls"

func main() {
	x := 0
	hls.Unroll()
	x = x + 1
}
`
	_, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err == nil {
		t.Fatal("expected error for intrinsic without a loop")
	}
}

func TestPipelinedLoop(t *testing.T) {
	src := `package main

func main(in chan int, out chan int) {
	sum := 0
	//hls:pipeline ii=1
	for {
		v := <-in
		sum = sum + v
		if v == 0 {
			break
		}
		out <- sum
	}
}
`
	u, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if pkg.Channel("__for_0_ctx_in") == nil || pkg.Channel("__for_0_ctx_out") == nil {
		t.Fatal("context channel pair missing")
	}
	if len(pkg.Procs) != 1 {
		t.Fatalf("have %d procs, want 1", len(pkg.Procs))
	}
	proc := pkg.Procs[0]
	if proc.Name != "__for_0_proc" {
		t.Errorf("proc name = %q, want __for_0_proc", proc.Name)
	}
	// first-tick flag, retained alias conditions, one slot for sum.
	if len(proc.States) != 3 {
		t.Errorf("have %d state slots, want 3", len(proc.States))
	}
	if proc.States[0].Name != "__first_tick" {
		t.Errorf("first state is %q, want __first_tick", proc.States[0].Name)
	}
	if len(u.SubProcs) != 1 {
		t.Fatalf("have %d sub-procs, want 1", len(u.SubProcs))
	}
	sp := u.SubProcs[0]
	if len(sp.Changed) != 1 || sp.Changed[0] != "sum" {
		t.Errorf("changed variables = %v, want [sum]", sp.Changed)
	}
	if sp.UsesOnReset {
		t.Error("body never reads the reset bit")
	}
	t.Logf("lowered package:\n%s", pkg)
}

func TestPipelinedLoopUnchangedVars(t *testing.T) {
	src := `package main

func main(bias int) {
	sum := 0
	//hls:pipeline ii=1
	for {
		sum = sum + bias
		if sum > 100 {
			break
		}
	}
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	sp := u.SubProcs[0]
	for _, name := range sp.Changed {
		if name == "bias" {
			t.Error("read-only variable reported as changed")
		}
	}
	if len(sp.Changed) != 1 || sp.Changed[0] != "sum" {
		t.Errorf("changed variables = %v, want [sum]", sp.Changed)
	}
}

func TestPipelinedLoopAliasConditions(t *testing.T) {
	src := `package main

func main(a chan int, b chan int, sel bool) {
	c := a
	if sel {
		c = b
	}
	x := 0
	//hls:pipeline ii=1
	for {
		x = x + 1
		if x == 4 {
			break
		}
	}
}
`
	_, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	in := pkg.Channel("__for_0_ctx_in")
	if in == nil {
		t.Fatal("context channel missing")
	}
	tup, ok := in.Elem.(*ir.TupleType)
	if !ok || len(tup.Elems) != 3 {
		t.Fatalf("context payload is %s, want a 3-tuple", in.Elem)
	}
	conds, ok := tup.Elems[2].(*ir.TupleType)
	if !ok {
		t.Fatalf("condition component is %s, want a tuple", tup.Elems[2])
	}
	// One select in c's alias tree, one encoded condition.
	if len(conds.Elems) != 1 {
		t.Errorf("have %d alias conditions, want 1", len(conds.Elems))
	}
	// The proc retains the decoded active conditions, not the body's
	// repacked tuple.
	if len(pkg.Procs) != 1 {
		t.Fatalf("have %d procs, want 1", len(pkg.Procs))
	}
	if got := pkg.Procs[0].Next[1]; got.Op != ir.OpSelect {
		t.Errorf("retained conditions come from %s, want the first-tick select", got.Op)
	}
}

func TestPipelinedLoopStaticAndOnReset(t *testing.T) {
	src := `package main

import "hls"

func main(out chan int) {
	//hls:pipeline ii=2
	for {
		n := hls.Static(0)
		if hls.OnReset() {
			n = 0
		}
		n = n + 1
		out <- n
		if n == 3 {
			break
		}
	}
}
`
	u, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if len(pkg.Procs) != 1 {
		t.Fatalf("have %d procs, want 1", len(pkg.Procs))
	}
	if !u.SubProcs[0].UsesOnReset {
		t.Error("body reads the reset bit but the flag is not set")
	}
	proc := pkg.Procs[0]
	var names []string
	for _, s := range proc.States {
		names = append(names, s.Name)
	}
	found := false
	for _, n := range names {
		if n == "__static_n" {
			found = true
		}
	}
	if !found {
		t.Errorf("state slots %v lack __static_n", names)
	}
	if len(proc.Sends) != 2 {
		t.Errorf("have %d proc sends, want 2 (out and ctx_out)", len(proc.Sends))
	}
}

func TestPipelinedCountedReceive(t *testing.T) {
	// The loop proc runs do-while: the body and its receives execute
	// before the exit test, so a top-of-body receive in a counted loop
	// stays unconditional and routable.
	src := `package main

func main(in chan int) {
	sum := 0
	//hls:pipeline ii=1
	for i := 0; i < 8; i++ {
		sum = sum + <-in
	}
}
`
	u, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if len(pkg.Procs) != 1 {
		t.Fatalf("have %d procs, want 1", len(pkg.Procs))
	}
	sp := u.SubProcs[0]
	var recv *ir.IOOp
	for _, op := range sp.Body.IOOps {
		if op.Kind == ir.RecvOp && op.Chan.Name == "in" {
			recv = op
		}
	}
	if recv == nil {
		t.Fatal("body lost the receive on in")
	}
	if !recv.Pred.IsLiteral(1) {
		t.Errorf("body receive predicate %s, want constant true", recv.Pred)
	}
	routed := false
	for _, op := range pkg.Procs[0].Recvs {
		if op.Chan.Name == "in" {
			routed = true
		}
	}
	if !routed {
		t.Error("proc does not perform the body's receive")
	}
}

func TestConditionalBodyReceive(t *testing.T) {
	// A receive gated by a branch carries its predicate; routing it
	// ahead of the body is not expressible.
	src := `package main

func main(in chan int, flag bool) {
	sum := 0
	//hls:pipeline ii=1
	for {
		v := 0
		if flag {
			v = <-in
		}
		sum = sum + v
		if sum > 10 {
			break
		}
	}
}
`
	_, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err == nil {
		t.Fatal("expected unimplemented error")
	}
	if !lower.IsNotImplemented(err) {
		t.Errorf("error is not the unimplemented class: %v", err)
	}
}

func TestNestedPipelineInherited(t *testing.T) {
	// The inner loop has no directive of its own and inherits the
	// enclosing interval.
	src := `package main

func main() {
	x := 0
	//hls:pipeline ii=2
	for {
		for {
			x = x + 1
			if x > 2 {
				break
			}
		}
		if x > 10 {
			break
		}
	}
}
`
	_, pkg, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if len(pkg.Procs) != 2 {
		t.Fatalf("have %d procs, want 2", len(pkg.Procs))
	}
	// The inner context exchange is re-routed into the outer proc; the
	// receive must keep trailing its matching send.
	var outer *ir.Proc
	for _, p := range pkg.Procs {
		if p.Name == "__for_0_proc" {
			outer = p
		}
	}
	if outer == nil {
		t.Fatal("outer loop proc missing")
	}
	found := false
	for _, op := range outer.Recvs {
		if op.Chan.Name != "__for_1_ctx_out" {
			continue
		}
		found = true
		if len(op.After) != 1 || op.After[0].Chan.Name != "__for_1_ctx_in" {
			t.Error("inner context receive lost its ordering edge on the send")
		}
	}
	if !found {
		t.Error("outer proc does not receive the inner loop's context")
	}
}

func TestNestedDefaultUnroll(t *testing.T) {
	// Default unrolling wins over interval inheritance for an inner
	// loop without a directive of its own.
	src := `package main

func main() {
	x := 0
	//hls:pipeline ii=2
	for {
		for j := 0; j < 2; j++ {
			x = x + 1
		}
		if x > 3 {
			break
		}
	}
}
`
	cfg := lower.DefaultConfig()
	cfg.DefaultUnroll = true
	_, pkg, err := lowerSrc(t, src, cfg)
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if len(pkg.Procs) != 1 {
		t.Errorf("have %d procs, want 1 (inner loop unrolled)", len(pkg.Procs))
	}
}

func TestEntryReturnsBindings(t *testing.T) {
	src := `package main

func main(a int, b int) {
	x := a + b
	y := x * 2
	_ = y
}
`
	u, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	// a, b, x, y in name order.
	if u.RetCount != 4 {
		t.Errorf("RetCount = %d, want 4", u.RetCount)
	}
	if u.Built == nil {
		t.Fatal("unit was not finalised")
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	src := `package main

func main() {
	x := 0
	if x == 0 {
		break
	}
}
`
	_, _, err := lowerSrc(t, src, lower.DefaultConfig())
	if err == nil {
		t.Fatal("expected error for break outside a loop")
	}
}
