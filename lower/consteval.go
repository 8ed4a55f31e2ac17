package lower

import (
	"go/ast"
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// constEval evaluates e as a compile-time constant of the subset
// grammar. The second return is false when e is not constant; evaluation
// never fails loudly, callers fall back to generating operations.
func (t *Translator) constEval(e ast.Expr) (v constant.Value, ok bool) {
	defer func() {
		// go/constant panics on kind mismatches; a malformed constant
		// expression is simply not a constant for our purposes.
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	e = astutil.Unparen(e)
	switch e := e.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return nil, false
		}
		c := constant.MakeFromLiteral(e.Value, token.INT, 0)
		return c, c.Kind() == constant.Int

	case *ast.Ident:
		switch e.Name {
		case "true":
			return constant.MakeBool(true), true
		case "false":
			return constant.MakeBool(false), true
		}
		return nil, false

	case *ast.UnaryExpr:
		x, ok := t.constEval(e.X)
		if !ok {
			return nil, false
		}
		switch e.Op {
		case token.SUB, token.ADD, token.NOT:
			return constant.UnaryOp(e.Op, x, 0), true
		}
		return nil, false

	case *ast.BinaryExpr:
		x, xok := t.constEval(e.X)
		y, yok := t.constEval(e.Y)
		if !xok || !yok {
			return nil, false
		}
		switch e.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
			return constant.MakeBool(constant.Compare(x, e.Op, y)), true
		case token.ADD, token.SUB, token.MUL, token.LAND, token.LOR:
			return constant.BinaryOp(x, e.Op, y), true
		}
		return nil, false
	}
	return nil, false
}

// constFalse reports whether e is a compile-time constant that never
// iterates: integer zero or boolean false.
func (t *Translator) constFalse(e ast.Expr) bool {
	c, ok := t.constEval(e)
	if !ok {
		return false
	}
	switch c.Kind() {
	case constant.Int:
		n, exact := constant.Int64Val(c)
		return exact && n == 0
	case constant.Bool:
		return !constant.BoolVal(c)
	}
	return false
}

// constInt64 evaluates e as a compile-time integer.
func (t *Translator) constInt64(e ast.Expr) (int64, bool) {
	c, ok := t.constEval(e)
	if !ok || c.Kind() != constant.Int {
		return 0, false
	}
	n, exact := constant.Int64Val(c)
	return n, exact
}
