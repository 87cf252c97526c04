package eval

type binding struct {
	name  string
	value Value
}

// Environment is one scope frame: bindings in definition order plus a
// link to the enclosing frame. Frames are shared by pointer, so a
// frame captured by a closure outlives the call that created it.
type Environment struct {
	bindings []binding
	outer    *Environment
}

func NewEnvironment(outer *Environment) *Environment {
	return &Environment{outer: outer}
}

// Child returns a new empty frame enclosed by e.
func (e *Environment) Child() *Environment { return NewEnvironment(e) }

func (e *Environment) Outer() *Environment { return e.outer }

// Define binds name in this frame. An existing binding of the same name
// is not replaced; the newer one simply wins later lookups.
func (e *Environment) Define(name string, value Value) {
	e.bindings = append(e.bindings, binding{name, value})
}

// Lookup finds the innermost binding of name, searching this frame
// newest-first and then each enclosing frame.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.outer {
		for i := len(env.bindings) - 1; i >= 0; i-- {
			if env.bindings[i].name == name {
				return env.bindings[i].value, true
			}
		}
	}
	return nil, false
}

// Names returns the distinct names bound in this frame, in the order
// they were first defined.
func (e *Environment) Names() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, b := range e.bindings {
		if !seen[b.name] {
			seen[b.name] = true
			names = append(names, b.name)
		}
	}
	return names
}

// Len is the number of bindings in this frame, shadowed ones included.
func (e *Environment) Len() int { return len(e.bindings) }
