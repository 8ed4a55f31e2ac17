package lower

import (
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/value"
)

func (t *Translator) genBlock(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := t.genStmt(s); err != nil {
			return err
		}
	}
	if call := t.pendingIntrinsic; call != nil {
		t.pendingIntrinsic = nil
		return t.errorf(call, "loop directive intrinsic does not precede a loop")
	}
	return nil
}

func (t *Translator) genStmt(s ast.Stmt) error {
	if call := t.pendingIntrinsic; call != nil {
		if _, ok := s.(*ast.ForStmt); !ok {
			t.pendingIntrinsic = nil
			return t.errorf(call, "loop directive intrinsic does not precede a loop")
		}
	}
	switch s := s.(type) {
	case *ast.DeclStmt:
		return t.genDecl(s)

	case *ast.AssignStmt:
		return t.genAssign(s)

	case *ast.IncDecStmt:
		return t.genIncDec(s)

	case *ast.ExprStmt:
		if call, ok := astutil.Unparen(s.X).(*ast.CallExpr); ok && isLoopIntrinsic(call) {
			t.pendingIntrinsic = call
			return nil
		}
		_, err := t.genExpr(s.X)
		return err

	case *ast.SendStmt:
		return t.genSend(s)

	case *ast.IfStmt:
		return t.genIf(s)

	case *ast.ForStmt:
		return t.genLoop(s)

	case *ast.BranchStmt:
		return t.genBranch(s)

	case *ast.BlockStmt:
		g := t.stack.Guard()
		err := t.genBlock(s.List)
		g.Release()
		return err

	case *ast.EmptyStmt:
		return nil
	}
	return t.wrapf(ErrUnimplemented, s, "statement %T", s)
}

func (t *Translator) genDecl(s *ast.DeclStmt) error {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return t.wrapf(ErrUnimplemented, s, "declaration %T", s.Decl)
	}
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			return t.wrapf(ErrUnimplemented, spec, "declaration spec %T", spec)
		}
		for i, name := range vs.Names {
			var v value.Value
			switch {
			case i < len(vs.Values):
				var err error
				if v, err = t.genExpr(vs.Values[i]); err != nil {
					return err
				}
			case vs.Type != nil:
				ty, err := t.typeOf(vs.Type)
				if err != nil {
					return err
				}
				w := ty.Wire()
				if w == nil {
					return t.errorf(name, "cannot declare %s without a binding", ty)
				}
				v = value.Make(t.b().Zero(w), ty)
			default:
				return t.errorf(name, "declaration of %s has neither type nor value", name.Name)
			}
			if err := t.declareVar(name.Name, v, name, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Translator) genAssign(s *ast.AssignStmt) error {
	switch s.Tok {
	case token.DEFINE, token.ASSIGN:
		if len(s.Lhs) != len(s.Rhs) {
			return t.wrapf(ErrUnimplemented, s, "unbalanced assignment")
		}
		// Evaluate every right-hand side before any binding changes.
		vals := make([]value.Value, len(s.Rhs))
		for i, rhs := range s.Rhs {
			if call, ok := astutil.Unparen(rhs).(*ast.CallExpr); ok && s.Tok == token.DEFINE {
				if name, isHLS := hlsCall(call); isHLS && name == "Static" {
					v, err := t.declareStatic(s.Lhs[i], call)
					if err != nil {
						return err
					}
					vals[i] = v
					continue
				}
			}
			v, err := t.genExpr(rhs)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		for i, lhs := range s.Lhs {
			id, ok := astutil.Unparen(lhs).(*ast.Ident)
			if !ok {
				return t.wrapf(ErrUnimplemented, lhs, "assignment target %T", lhs)
			}
			if id.Name == "_" {
				continue
			}
			if s.Tok == token.DEFINE {
				if err := t.declareVar(id.Name, vals[i], id, true); err != nil {
					return err
				}
			} else if err := t.assignVar(id.Name, vals[i], id); err != nil {
				return err
			}
		}
		return nil

	case token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN:
		if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
			return t.wrapf(ErrUnimplemented, s, "unbalanced assignment")
		}
		id, ok := astutil.Unparen(s.Lhs[0]).(*ast.Ident)
		if !ok {
			return t.wrapf(ErrUnimplemented, s.Lhs[0], "assignment target %T", s.Lhs[0])
		}
		old, ok := t.ctx().Get(id.Name)
		if !ok {
			return t.errorf(id, "undeclared variable %s", id.Name)
		}
		rhs, err := t.genExpr(s.Rhs[0])
		if err != nil {
			return err
		}
		if !old.HasData() || !rhs.HasData() {
			return t.errorf(s, "operand has no wire representation")
		}
		b := t.b()
		var n *ir.Node
		switch s.Tok {
		case token.ADD_ASSIGN:
			n = b.Add(old.Node(), rhs.Node())
		case token.SUB_ASSIGN:
			n = b.Sub(old.Node(), rhs.Node())
		case token.MUL_ASSIGN:
			n = b.Mul(old.Node(), rhs.Node())
		}
		return t.assignVar(id.Name, value.Make(n, old.Type()), id)
	}
	return t.wrapf(ErrUnimplemented, s, "assignment %s", s.Tok)
}

func (t *Translator) genIncDec(s *ast.IncDecStmt) error {
	id, ok := astutil.Unparen(s.X).(*ast.Ident)
	if !ok {
		return t.wrapf(ErrUnimplemented, s.X, "target %T", s.X)
	}
	old, ok := t.ctx().Get(id.Name)
	if !ok {
		return t.errorf(id, "undeclared variable %s", id.Name)
	}
	if !old.HasData() {
		return t.errorf(s, "operand has no wire representation")
	}
	b := t.b()
	one := b.Literal(1, old.Node().Type.BitCount())
	var n *ir.Node
	if s.Tok == token.INC {
		n = b.Add(old.Node(), one)
	} else {
		n = b.Sub(old.Node(), one)
	}
	return t.assignVar(id.Name, value.Make(n, old.Type()), id)
}

func (t *Translator) genSend(s *ast.SendStmt) error {
	chv, err := t.genExpr(s.Chan)
	if err != nil {
		return err
	}
	ct, ok := chv.Type().(*value.ChanType)
	if !ok {
		return t.errorf(s, "send on non-channel")
	}
	ch, err := t.chanLeaf(chv.Alias(), s)
	if err != nil {
		return err
	}
	payload, err := t.genExpr(s.Value)
	if err != nil {
		return err
	}
	if !payload.HasData() || !payload.Type().Equal(ct.Elem) {
		return t.errorf(s, "send of %s on %s", payload.Type(), chv.Type())
	}
	t.unit().FB.Send(ch.IR, t.ctx().FullCondBit(), payload.Node())
	return nil
}

func (t *Translator) genIf(s *ast.IfStmt) error {
	if s.Init != nil {
		return t.wrapf(ErrUnimplemented, s, "if statement with init clause")
	}
	condV, err := t.genExpr(s.Cond)
	if err != nil {
		return err
	}
	cond, err := t.requireBool(condV, s.Cond)
	if err != nil {
		return err
	}

	g := t.stack.Guard()
	g.Ctx().AndCondition(cond)
	err = t.genBlock(s.Body.List)
	g.Release()
	if err != nil {
		return err
	}

	if s.Else == nil {
		return nil
	}
	g = t.stack.Guard()
	g.Ctx().AndCondition(t.b().Not(cond))
	switch el := s.Else.(type) {
	case *ast.BlockStmt:
		err = t.genBlock(el.List)
	case *ast.IfStmt:
		err = t.genIf(el)
	default:
		err = t.wrapf(ErrUnimplemented, el, "else clause %T", el)
	}
	g.Release()
	return err
}

// genBranch records a break or continue as a condition, not a jump: the
// frame-relative path condition is folded into the matching accumulator
// and everything downstream of the statement is masked off.
func (t *Translator) genBranch(s *ast.BranchStmt) error {
	if s.Label != nil {
		return t.wrapf(ErrUnimplemented, s, "labelled branch")
	}
	ctx := t.ctx()
	if !ctx.InForBody {
		return t.errorf(s, "%s outside a loop body", s.Tok)
	}
	switch s.Tok {
	case token.BREAK:
		bit := ctx.RelCondBit()
		ctx.OrIntoBreak(bit)
		ctx.AndCondition(t.b().Not(bit))
		return nil
	case token.CONTINUE:
		bit := ctx.RelCondBit()
		ctx.OrIntoContinue(bit)
		ctx.AndCondition(t.b().Not(bit))
		return nil
	}
	return t.wrapf(ErrUnimplemented, s, "branch %s", s.Tok)
}

// declareStatic binds lhs to a fresh persistent slot initialised by an
// hls.Static call. The slot's current value enters the unit as a
// parameter; the enclosing proc feeds it from state.
func (t *Translator) declareStatic(lhs ast.Expr, call *ast.CallExpr) (value.Value, error) {
	id, ok := astutil.Unparen(lhs).(*ast.Ident)
	if !ok || id.Name == "_" {
		return value.Value{}, t.errorf(lhs, "hls.Static must initialise a named variable")
	}
	if len(call.Args) != 1 {
		return value.Value{}, t.errorf(call, "hls.Static takes one argument")
	}
	init, ok := t.constInt64(call.Args[0])
	if !ok {
		return value.Value{}, t.errorf(call, "hls.Static argument must be a constant")
	}
	u := t.unit()
	slot := "__static_" + id.Name
	for _, st := range u.Statics {
		if st.Name == slot {
			return value.Value{}, t.errorf(call, "duplicate static %s", id.Name)
		}
	}
	st := &Static{
		Name: slot,
		Var:  id.Name,
		Init: u.FB.Literal(uint64(init), value.IntWidth),
	}
	st.Val = value.Make(u.FB.Param(slot, ir.Bits(value.IntWidth)), value.Int())
	u.Statics = append(u.Statics, st)
	return st.Val, nil
}
