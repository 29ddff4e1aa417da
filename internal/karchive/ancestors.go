package karchive

import "github.com/emirpasic/gods/stacks/arraystack"

// ancestorStack is the chain of pool indices currently on the decode
// stack. Decode creates a fresh one for each $top entry and threads it by
// pointer through every recursive dispatch call, which push and pop in
// place; it is never shared across Decode calls.
//
// Expected depth is small (typically well under 64, per the archive
// formats this package targets), so Contains scans the underlying stack
// rather than keeping a second, synchronized membership set.
type ancestorStack struct {
	s *arraystack.Stack
}

func newAncestorStack(seed ...int) *ancestorStack {
	a := &ancestorStack{s: arraystack.New()}
	for _, idx := range seed {
		a.s.Push(idx)
	}
	return a
}

func (a *ancestorStack) push(idx int) {
	a.s.Push(idx)
}

func (a *ancestorStack) pop() {
	a.s.Pop()
}

func (a *ancestorStack) contains(idx int) bool {
	for _, v := range a.s.Values() {
		if v.(int) == idx {
			return true
		}
	}
	return false
}
