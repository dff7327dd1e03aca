package runtime

import (
	"sort"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Scope is one level of the scope chain.
type Scope struct {
	values map[string]Value
	parent *Scope
}

// NewScope creates a new scope, optionally nested under a parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds name in this scope, shadowing any outer binding.
func (s *Scope) Define(name string, value Value) {
	if value == nil {
		value = Nil
	}
	s.values[name] = value
}

// Lookup searches outward through the scope chain.
func (s *Scope) Lookup(name string) (Value, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, true
		}
	}
	return Nil, false
}

// Keys returns the bindings of this scope in sorted order.
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Memory owns the global scope and tracks the active one. Scopes entered for a
// call hang off the callee's closure, so Pop restores from a stack of saved
// scopes rather than walking to the parent.
type Memory struct {
	global  *Scope
	current *Scope
	saved   *arraystack.Stack
}

func NewMemory() *Memory {
	global := NewScope(nil)
	return &Memory{global: global, current: global, saved: arraystack.New()}
}

func (m *Memory) Global() *Scope  { return m.global }
func (m *Memory) Current() *Scope { return m.current }

// Depth counts the scopes entered and not yet popped.
func (m *Memory) Depth() int { return m.saved.Size() }

// Push enters a block scope nested in the current one.
func (m *Memory) Push() {
	m.PushScope(m.current)
}

// PushScope enters a new scope whose parent is the given scope, typically a closure's.
func (m *Memory) PushScope(parent *Scope) {
	m.saved.Push(m.current)
	m.current = NewScope(parent)
}

// Pop returns to the scope that was active before the matching push.
func (m *Memory) Pop() {
	prev, ok := m.saved.Pop()
	if !ok {
		return
	}
	m.current = prev.(*Scope)
}

// Lookup resolves name from the current scope outward; unbound names are nil.
func (m *Memory) Lookup(name string) Value {
	v, _ := m.current.Lookup(name)
	return v
}

// Assign binds name. A local assignment always binds in the current scope.
// Otherwise the nearest existing binding is updated, or a global is created.
// Assigning nil to an existing non-local binding removes it.
func (m *Memory) Assign(name string, value Value, local bool) {
	if value == nil {
		value = Nil
	}
	if local {
		m.current.Define(name, value)
		return
	}
	for scope := m.current; scope != nil; scope = scope.parent {
		if _, ok := scope.values[name]; ok {
			if value.Kind() == KindNil {
				delete(scope.values, name)
			} else {
				scope.values[name] = value
			}
			return
		}
	}
	if value.Kind() == KindNil {
		return
	}
	m.global.values[name] = value
}
