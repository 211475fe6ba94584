package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Frame is one scope level: an unordered set of bindings. Frames are
// shared by handle, so every Environment holding the same *Frame observes
// the same bindings.
type Frame struct {
	values map[string]Value
	global bool
	mu     sync.RWMutex
}

// NewFrame creates an empty local frame.
func NewFrame() *Frame {
	return &Frame{values: make(map[string]Value)}
}

// NewGlobalFrame creates the frame that sits at the bottom of every
// environment. Assignments never target it.
func NewGlobalFrame() *Frame {
	return &Frame{values: make(map[string]Value), global: true}
}

func (f *Frame) IsGlobal() bool { return f.global }

// Lookup returns the binding for name in this frame only.
func (f *Frame) Lookup(name string) (Value, bool) {
	f.mu.RLock()
	v, ok := f.values[name]
	f.mu.RUnlock()
	return v, ok
}

// Has reports whether name is bound in this frame.
func (f *Frame) Has(name string) bool {
	_, ok := f.Lookup(name)
	return ok
}

// Declare binds name in this frame. It reports false when the name is
// already bound here.
func (f *Frame) Declare(name string, value Value) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.values[name]; exists {
		return false
	}
	f.values[name] = value
	return true
}

// Set overwrites an existing binding. It reports false when name is not
// bound in this frame.
func (f *Frame) Set(name string, value Value) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.values[name]; !exists {
		return false
	}
	f.values[name] = value
	return true
}

// Names returns the bound names in sorted order.
func (f *Frame) Names() []string {
	f.mu.RLock()
	out := make([]string, 0, len(f.values))
	for name := range f.values {
		out = append(out, name)
	}
	f.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Environment is an ordered stack of frames, innermost last. Frame 0 is
// always the global frame.
type Environment struct {
	frames []*Frame
}

// NewEnvironment creates an environment over the given global frame. A nil
// frame allocates a fresh one.
func NewEnvironment(globals *Frame) *Environment {
	if globals == nil {
		globals = NewGlobalFrame()
	}
	return &Environment{frames: []*Frame{globals}}
}

// GlobalFrame returns frame 0.
func (e *Environment) GlobalFrame() *Frame {
	return e.frames[0]
}

// Current returns the innermost frame.
func (e *Environment) Current() *Frame {
	return e.frames[len(e.frames)-1]
}

// Depth reports the number of frames, including the global frame.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Push enters a new innermost frame and returns it.
func (e *Environment) Push() *Frame {
	frame := NewFrame()
	e.frames = append(e.frames, frame)
	return frame
}

// Pop leaves the innermost frame. The global frame is never popped; Pop
// reports false when only it remains.
func (e *Environment) Pop() bool {
	if len(e.frames) <= 1 {
		return false
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
	return true
}

// Get searches frames innermost to outermost, including the global frame.
func (e *Environment) Get(name string) (Value, error) {
	for idx := len(e.frames) - 1; idx >= 0; idx-- {
		if v, ok := e.frames[idx].Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnboundName, name)
}

// GetLocal is Get restricted to the non-global frames.
func (e *Environment) GetLocal(name string) (Value, error) {
	for idx := len(e.frames) - 1; idx >= 1; idx-- {
		if v, ok := e.frames[idx].Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnboundName, name)
}

// Define binds name in the innermost frame.
func (e *Environment) Define(name string, value Value) error {
	if !e.Current().Declare(name, value) {
		return fmt.Errorf("%w: '%s' is already declared in this scope", ErrDuplicateName, name)
	}
	return nil
}

// Assign updates the innermost non-global binding for name. Global
// bindings are visible to Get but are never assignable, so a name bound
// only globally is reported as unbound.
func (e *Environment) Assign(name string, value Value) error {
	for idx := len(e.frames) - 1; idx >= 1; idx-- {
		if e.frames[idx].Set(name, value) {
			return nil
		}
	}
	return fmt.Errorf("%w: '%s'", ErrUnboundName, name)
}

// Resolve locates the frame holding name using the same search order as Get.
func (e *Environment) Resolve(name string) (CellRef, error) {
	for idx := len(e.frames) - 1; idx >= 0; idx-- {
		if e.frames[idx].Has(name) {
			return CellRef{Frame: e.frames[idx], Name: name}, nil
		}
	}
	return CellRef{}, fmt.Errorf("%w: '%s'", ErrUnboundName, name)
}

// Globals returns a fresh environment holding only the global frame.
func (e *Environment) Globals() *Environment {
	return NewEnvironment(e.frames[0])
}
