package genctx

// A Guard ties one pushed frame to a scope. Release pops the frame and
// is safe to call more than once, so it can sit in a defer while the
// happy path releases early to merge before reading parent state.
type Guard struct {
	s        *Stack
	c        *Context
	released bool
}

// Guard pushes a derived frame and returns its guard.
func (s *Stack) Guard() *Guard {
	return &Guard{s: s, c: s.Push()}
}

// FreshGuard pushes an isolated root frame emitting into e and returns
// its guard.
func (s *Stack) FreshGuard(e Emitter) *Guard {
	return &Guard{s: s, c: s.PushFresh(e)}
}

// Ctx returns the guarded frame.
func (g *Guard) Ctx() *Context { return g.c }

// Release pops the guarded frame, merging it into its parent. The frame
// must be the current one; anything pushed inside the scope must have
// been popped first.
func (g *Guard) Release() {
	if g.released {
		return
	}
	if g.s.top != g.c {
		panic("genctx: guard released out of order")
	}
	g.s.Pop()
	g.released = true
}
