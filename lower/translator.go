// Package lower translates annotated loops of a Go-subset source
// language into hardware: either a fully unrolled sequence of
// combinational operations, or a separate communicating process
// executing one loop iteration per activation at a fixed initiation
// interval.
//
// The Translator walks statements and expressions of the subset,
// emitting operations into the active code-generation unit under an
// ambient translation context (see package genctx). Loops are the
// interesting part; everything else exists to drive them.
package lower

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/gohls/looplower/genctx"
	"github.com/gohls/looplower/ir"
	"github.com/gohls/looplower/pragma"
	"github.com/gohls/looplower/solve"
	"github.com/gohls/looplower/value"
)

// onResetVar is the reserved pseudo-variable carrying the on-reset bit.
// It is never packed into a loop context; every unit re-declares it.
const onResetVar = "__on_reset"

// hlsPkg is the selector package of compiler intrinsics.
const hlsPkg = "hls"

// A Translator lowers one source file's functions.
type Translator struct {
	cfg     Config
	fset    *token.FileSet
	pragmas pragma.Map
	pkg     *ir.Package
	oracle  solve.Oracle
	log     *Logger

	stack   *genctx.Stack
	declIDs map[string]bool

	nextFor int

	// pendingIntrinsic is an hls.Unroll/hls.Pipeline call statement
	// waiting to be claimed by the loop that follows it.
	pendingIntrinsic *ast.CallExpr
}

// New returns a Translator for file. The file's hls pragmas are scanned
// up front; lowering only ever sees resolved directives.
func New(fset *token.FileSet, file *ast.File, cfg Config, oracle solve.Oracle) (*Translator, error) {
	pragmas, err := pragma.Scan(fset, file)
	if err != nil {
		return nil, err
	}
	t := &Translator{
		cfg:     cfg,
		fset:    fset,
		pragmas: pragmas,
		pkg:     ir.NewPackage(file.Name.Name),
		oracle:  oracle,
		log:     NewNopLogger(),
		declIDs: make(map[string]bool),
	}
	return t, nil
}

// SetLogger sets the logger for the translator.
func (t *Translator) SetLogger(l *Logger) {
	t.log = &Logger{
		SugaredLogger: l.SugaredLogger,
		module:        color.CyanString("lower"),
	}
}

// Package returns the IR package produced so far.
func (t *Translator) Package() *ir.Package { return t.pkg }

// LowerFunc lowers one function declaration into a Unit. Channel-typed
// parameters become external streaming channels; data parameters become
// function parameters.
func (t *Translator) LowerFunc(fn *ast.FuncDecl) (*Unit, error) {
	if fn == nil || fn.Body == nil {
		return nil, errors.New("lower: function is nil or has no body")
	}
	unit := &Unit{
		Name: fn.Name.Name,
		FB:   ir.NewFunc(fn.Name.Name, t.pkg),
	}
	root := genctx.New(unit)
	t.stack = genctx.NewStack(root)

	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			ty, err := t.typeOf(field.Type)
			if err != nil {
				return nil, err
			}
			for _, name := range field.Names {
				if err := t.declareParam(unit, name.Name, ty); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := t.genBlock(fn.Body.List); err != nil {
		return nil, err
	}

	// Finalise: the unit returns its data-carrying bindings in stable
	// name order.
	ctx := t.ctx()
	var rets []*ir.Node
	bindings := make(map[string]value.Value)
	for _, name := range ctx.Names() {
		v, _ := ctx.Get(name)
		bindings[name] = v
		if name != onResetVar && v.HasData() {
			rets = append(rets, v.Node())
		}
	}
	built, err := unit.FB.BuildWithReturnValue(unit.FB.Tuple(rets...))
	if err != nil {
		return nil, err
	}
	unit.Built = built
	unit.RetCount = len(rets)
	unit.Bindings = bindings
	return unit, nil
}

func (t *Translator) declareParam(unit *Unit, name string, ty value.Type) error {
	switch ty := ty.(type) {
	case *value.ChanType:
		irch, err := t.pkg.NewStreamChannel(name, ty.Elem.Wire(), 0, ir.FlowReadyValid)
		if err != nil {
			return err
		}
		ch := &Chan{IR: irch}
		unit.AddChan(ch)
		return t.ctx().Declare(name, value.MakeAlias(ty, value.NewLeaf(ch)))
	default:
		p := unit.FB.Param(name, ty.Wire())
		return t.ctx().Declare(name, value.Make(p, ty))
	}
}

func (t *Translator) ctx() *genctx.Context { return t.stack.Current() }

func (t *Translator) b() ir.Builder { return t.ctx().Emit.Builder() }

// unit returns the unit currently emitted into.
func (t *Translator) unit() *Unit {
	u, ok := t.ctx().Emit.(*Unit)
	assertf(ok, "active emitter is not a unit")
	return u
}

func (t *Translator) pos(n ast.Node) token.Position {
	return t.fset.Position(n.Pos())
}

func (t *Translator) errorf(n ast.Node, format string, args ...interface{}) error {
	return errors.Errorf("%s: %s", t.pos(n), fmt.Sprintf(format, args...))
}

func (t *Translator) wrapf(err error, n ast.Node, format string, args ...interface{}) error {
	return errors.Wrapf(err, "%s: %s", t.pos(n), fmt.Sprintf(format, args...))
}

// getOnReset returns the on-reset pseudo-variable of the active unit. An
// entry unit runs exactly once, so its on-reset bit is constant true;
// pipelined body units re-declare the variable bound to their on-reset
// input before any statement runs.
func (t *Translator) getOnReset() value.Value {
	if v, ok := t.ctx().Get(onResetVar); ok {
		return v
	}
	v := value.Make(t.b().Literal(1, 1), value.Bool())
	if err := t.ctx().Declare(onResetVar, v); err != nil {
		assertf(false, "cannot declare %s: %v", onResetVar, err)
	}
	return v
}

// declKey identifies one source declaration for duplicate detection.
func (t *Translator) declKey(name string, n ast.Node) string {
	return fmt.Sprintf("%s@%s", name, t.pos(n))
}

func (t *Translator) snapshotDeclIDs() map[string]bool {
	saved := make(map[string]bool, len(t.declIDs))
	for k := range t.declIDs {
		saved[k] = true
	}
	return saved
}

func (t *Translator) restoreDeclIDs(saved map[string]bool) {
	t.declIDs = make(map[string]bool, len(saved))
	for k := range saved {
		t.declIDs[k] = true
	}
}

// declareVar binds a new variable, enforcing declaration uniqueness.
// checkUnique is off when a captured variable is legitimately
// re-declared inside a pipelined loop body.
func (t *Translator) declareVar(name string, v value.Value, n ast.Node, checkUnique bool) error {
	if checkUnique {
		key := t.declKey(name, n)
		if t.declIDs[key] {
			return t.errorf(n, "duplicate declaration of %s", name)
		}
		t.declIDs[key] = true
	}
	if err := t.ctx().Declare(name, v); err != nil {
		return t.wrapf(err, n, "declare %s", name)
	}
	return nil
}

// assignVar rebinds a variable under the current path condition. The
// conditional select between new and old value (and, when the referent
// itself changed, the select alias) is built here; scope exits merely
// propagate the merged binding upward.
func (t *Translator) assignVar(name string, v value.Value, n ast.Node) error {
	ctx := t.ctx()
	old, ok := ctx.Get(name)
	if !ok {
		return t.wrapf(genctx.ErrUndeclared, n, "%s", name)
	}
	merged := v
	if cond := ctx.FullCond; cond != nil {
		b := t.b()
		node := v.Node()
		if v.Node() != nil && old.Node() != nil {
			node = b.Select(cond, v.Node(), old.Node())
		}
		alias := v.Alias()
		if !v.Alias().Equal(old.Alias()) {
			alias = value.NewSelect(cond, v.Alias(), old.Alias())
		}
		merged = value.MakeWithAlias(node, old.Type(), alias)
	}
	if err := ctx.Assign(name, merged); err != nil {
		return t.wrapf(err, n, "%s", name)
	}
	return nil
}
