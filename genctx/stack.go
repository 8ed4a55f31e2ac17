package genctx

// A Stack is the strictly nesting stack of translation contexts owned by
// one translator. Push derives a child frame; Pop merges the child's
// assignments back into its parent through conditional selects and
// restores the parent as current.
type Stack struct {
	top *Context
}

// NewStack returns a stack with root as its only frame.
func NewStack(root *Context) *Stack {
	return &Stack{top: root}
}

// Current returns the active frame.
func (s *Stack) Current() *Context { return s.top }

// Push derives a child frame from the current one. The child inherits
// the variable bindings and path conditions; propagation flags default
// to on and callers adjust them after pushing.
func (s *Stack) Push() *Context {
	parent := s.top
	child := New(parent.Emit)
	child.parent = parent
	child.FullCond = parent.FullCond
	child.RelCond = parent.RelCond
	child.PropagateUp = true
	child.PropagateBreakUp = true
	child.PropagateContinueUp = true
	child.InForBody = parent.InForBody
	child.InPipelinedBody = parent.InPipelinedBody
	child.OuterII = parent.OuterII
	for n, v := range parent.vars {
		child.vars[n] = v
	}
	s.top = child
	return child
}

// PushFresh pushes an isolated root frame emitting into e. Nothing is
// inherited and nothing merges back on pop; used when building an
// independently scoped unit such as a pipelined loop body.
func (s *Stack) PushFresh(e Emitter) *Context {
	child := New(e)
	child.parent = s.top
	child.PropagateUp = false
	s.top = child
	return child
}

// Pop removes the current frame, merging it into its parent.
func (s *Stack) Pop() {
	child := s.top
	if child.parent == nil {
		panic("genctx: pop of root context")
	}
	s.top = child.parent
	if !child.PropagateUp {
		return
	}
	parent := s.top
	b := parent.Emit.Builder()

	// Assignments already hold their conditional selects (applied at
	// assignment time, under the path condition); the parent's view of
	// a variable only changes here, on scope exit.
	for _, name := range child.Names() {
		if !child.assigned[name] || child.declared[name] {
			continue
		}
		pv, ok := parent.vars[name]
		if !ok {
			continue
		}
		cv := child.vars[name]
		if cv.Same(pv) {
			continue
		}
		parent.vars[name] = cv
		parent.assigned[name] = true
	}

	if child.PropagateBreakUp && child.RelBreakCond != nil {
		parent.OrIntoBreak(child.RelBreakCond)
		parent.AndCondition(b.Not(child.RelBreakCond))
	}
	if child.PropagateContinueUp && child.RelContinueCond != nil {
		parent.OrIntoContinue(child.RelContinueCond)
		parent.AndCondition(b.Not(child.RelContinueCond))
	}
}
