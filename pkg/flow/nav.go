package flow

import "sync"

// Navigator is an explicit navigation context with push/pop semantics. It
// replaces ambient global "what's currently shown" state so the lifecycle
// machine can run without a UI shell.
type Navigator struct {
	mu    sync.Mutex
	stack []View
}

// NewNavigator returns an empty navigator: nothing explicitly navigated.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Push makes v the current explicit panel.
func (n *Navigator) Push(v View) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, v)
}

// Pop leaves the current explicit panel, returning to the previous one or to
// stage-derived panel selection when the stack empties.
func (n *Navigator) Pop() (View, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return "", false
	}
	v := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	return v, true
}

// Current returns the explicit panel on top of the stack, if any.
func (n *Navigator) Current() (View, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return "", false
	}
	return n.stack[len(n.stack)-1], true
}

// Reset clears all explicit navigation.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = nil
}

// Depth returns the explicit-navigation depth.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}
