package lower

import (
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

// typeOf maps a subset type expression to a source type.
func (t *Translator) typeOf(e ast.Expr) (value.Type, error) {
	switch e := e.(type) {
	case *ast.Ident:
		switch e.Name {
		case "int":
			return value.Int(), nil
		case "bool":
			return value.Bool(), nil
		}
		return nil, t.wrapf(ErrUnimplemented, e, "type %s", e.Name)
	case *ast.ChanType:
		elem, err := t.typeOf(e.Value)
		if err != nil {
			return nil, err
		}
		return &value.ChanType{Elem: elem}, nil
	}
	return nil, t.wrapf(ErrUnimplemented, e, "type expression %T", e)
}

// hlsCall matches a call to the intrinsic package and returns its name.
func hlsCall(call *ast.CallExpr) (string, bool) {
	sel, ok := astutil.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != hlsPkg {
		return "", false
	}
	return sel.Sel.Name, true
}

// isLoopIntrinsic reports whether call is a directive intrinsic claimed
// by the loop that follows it.
func isLoopIntrinsic(call *ast.CallExpr) bool {
	name, ok := hlsCall(call)
	return ok && (name == "Unroll" || name == "Pipeline")
}

// chanLeaf resolves an alias tree to its single channel endpoint.
// Channel operations through a conditionally selected endpoint are not
// lowered here.
func (t *Translator) chanLeaf(a *value.Alias, n ast.Node) (*Chan, error) {
	if a == nil {
		return nil, t.errorf(n, "channel operation on value with no endpoint")
	}
	switch a.Kind {
	case value.Leaf:
		ch, ok := a.Chan.(*Chan)
		assertf(ok, "alias leaf is not a unit channel: %T", a.Chan)
		return ch, nil
	case value.Compound, value.SelectAlias:
		return nil, t.wrapf(ErrUnimplemented, n, "channel operation through %s", a)
	}
	return nil, t.errorf(n, "malformed alias %s", a)
}

// genExpr emits operations for one expression and returns its value.
func (t *Translator) genExpr(e ast.Expr) (value.Value, error) {
	e = astutil.Unparen(e)
	b := t.b()
	switch e := e.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return value.Value{}, t.wrapf(ErrUnimplemented, e, "literal %s", e.Value)
		}
		n, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return value.Value{}, t.wrapf(err, e, "integer literal")
		}
		return value.Make(b.Literal(uint64(n), value.IntWidth), value.Int()), nil

	case *ast.Ident:
		switch e.Name {
		case "true":
			return value.Make(b.Literal(1, 1), value.Bool()), nil
		case "false":
			return value.Make(b.Literal(0, 1), value.Bool()), nil
		}
		v, ok := t.ctx().Get(e.Name)
		if !ok {
			return value.Value{}, t.errorf(e, "undeclared variable %s", e.Name)
		}
		return v, nil

	case *ast.UnaryExpr:
		return t.genUnary(e)

	case *ast.BinaryExpr:
		return t.genBinary(e)

	case *ast.CallExpr:
		return t.genCall(e)
	}
	return value.Value{}, t.wrapf(ErrUnimplemented, e, "expression %T", e)
}

func (t *Translator) genUnary(e *ast.UnaryExpr) (value.Value, error) {
	b := t.b()
	if e.Op == token.ARROW {
		// Channel receive. The payload becomes a function input routed
		// by the enclosing proc; the op fires under the path condition.
		chv, err := t.genExpr(e.X)
		if err != nil {
			return value.Value{}, err
		}
		ct, ok := chv.Type().(*value.ChanType)
		if !ok {
			return value.Value{}, t.errorf(e, "receive from non-channel")
		}
		ch, err := t.chanLeaf(chv.Alias(), e)
		if err != nil {
			return value.Value{}, err
		}
		op := t.unit().FB.Receive(ch.IR, t.ctx().FullCondBit())
		return value.Make(op.Result, ct.Elem), nil
	}

	x, err := t.genExpr(e.X)
	if err != nil {
		return value.Value{}, err
	}
	if !x.HasData() {
		return value.Value{}, t.errorf(e, "operand has no wire representation")
	}
	switch e.Op {
	case token.NOT:
		return value.Make(b.Not(x.Node()), value.Bool()), nil
	case token.SUB:
		zero := b.Literal(0, value.IntWidth)
		return value.Make(b.Sub(zero, x.Node()), x.Type()), nil
	}
	return value.Value{}, t.wrapf(ErrUnimplemented, e, "unary %s", e.Op)
}

func (t *Translator) genBinary(e *ast.BinaryExpr) (value.Value, error) {
	b := t.b()
	x, err := t.genExpr(e.X)
	if err != nil {
		return value.Value{}, err
	}
	y, err := t.genExpr(e.Y)
	if err != nil {
		return value.Value{}, err
	}
	if !x.HasData() || !y.HasData() {
		return value.Value{}, t.errorf(e, "operand has no wire representation")
	}
	switch e.Op {
	case token.ADD:
		return value.Make(b.Add(x.Node(), y.Node()), x.Type()), nil
	case token.SUB:
		return value.Make(b.Sub(x.Node(), y.Node()), x.Type()), nil
	case token.MUL:
		return value.Make(b.Mul(x.Node(), y.Node()), x.Type()), nil
	case token.EQL:
		return value.Make(b.Eq(x.Node(), y.Node()), value.Bool()), nil
	case token.NEQ:
		return value.Make(b.Ne(x.Node(), y.Node()), value.Bool()), nil
	case token.LSS:
		return value.Make(b.Lt(x.Node(), y.Node()), value.Bool()), nil
	case token.LEQ:
		return value.Make(b.Le(x.Node(), y.Node()), value.Bool()), nil
	case token.GTR:
		return value.Make(b.Gt(x.Node(), y.Node()), value.Bool()), nil
	case token.GEQ:
		return value.Make(b.Ge(x.Node(), y.Node()), value.Bool()), nil
	case token.LAND:
		// Hardware evaluates both sides; there is no short circuit.
		return value.Make(b.And(x.Node(), y.Node()), value.Bool()), nil
	case token.LOR:
		return value.Make(b.Or(x.Node(), y.Node()), value.Bool()), nil
	}
	return value.Value{}, t.wrapf(ErrUnimplemented, e, "operator %s", e.Op)
}

func (t *Translator) genCall(e *ast.CallExpr) (value.Value, error) {
	name, ok := hlsCall(e)
	if !ok {
		return value.Value{}, t.wrapf(ErrUnimplemented, e, "call %T", e.Fun)
	}
	switch name {
	case "OnReset":
		if len(e.Args) != 0 {
			return value.Value{}, t.errorf(e, "hls.OnReset takes no arguments")
		}
		t.unit().UsesOnReset = true
		return t.getOnReset(), nil

	case "Static":
		// Only meaningful as the initialiser of a declaration, where
		// the statement walk binds the slot to the declared variable.
		return value.Value{}, t.errorf(e, "hls.Static must initialise a variable declaration")

	case "Unroll", "Pipeline":
		return value.Value{}, t.errorf(e, "hls.%s must directly precede a loop", name)
	}
	return value.Value{}, t.wrapf(ErrUnimplemented, e, "intrinsic hls.%s", name)
}

// requireBool checks that v is boolean typed. Loop and branch conditions
// reach here after the surrounding checks, so a mismatch is possible
// only for user-written conditions of the wrong type.
func (t *Translator) requireBool(v value.Value, n ast.Node) (*ir.Node, error) {
	if _, ok := v.Type().(*value.BoolType); !ok || !v.HasData() {
		return nil, t.errorf(n, "condition is not boolean (have %s)", v.Type())
	}
	return v.Node(), nil
}
