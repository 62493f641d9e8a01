package editor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"case_strategy_editor/services/document"
)

var (
	// ErrViewDestroyed is returned when dispatching to a destroyed view.
	ErrViewDestroyed = errors.New("editor view destroyed")
	// ErrStaleTransaction is returned for a document-changing transaction
	// that was built on a state other than the current one.
	ErrStaleTransaction = errors.New("transaction built on a stale state")
)

// Box is the rendered geometry of a node in CSS pixels, relative to the top
// of the editing surface.
type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Surface is the rendered representation of the document. Sync re-renders
// the content and overlay; NodeBox maps the position of a top-level node to
// its rendered box and reports false when the node produced no box.
type Surface interface {
	Sync(doc *document.Document, decorations *DecorationSet) error
	NodeBox(pos int) (Box, bool)
	Close() error
}

// PluginView reacts to view updates.
type PluginView interface {
	Update(view *View, prev *State, tr *Transaction)
	Destroy()
}

// Plugin extends the editor with a state field, decorations and a view.
type Plugin struct {
	Key         string
	Init        func(state *State) any
	Apply       func(tr *Transaction, value any, state *State) any
	Decorations func(state *State) *DecorationSet
	View        func(view *View) PluginView
}

// View binds a state to a surface and to the plugin views.
type View struct {
	mu        sync.Mutex
	state     *State
	surface   Surface
	views     []PluginView
	destroyed atomic.Bool
}

// NewView renders the initial state on surface and starts the plugin views.
func NewView(state *State, surface Surface) (*View, error) {
	v := &View{state: state, surface: surface}
	if err := surface.Sync(state.Doc(), v.decorations(state)); err != nil {
		return nil, fmt.Errorf("failed to render initial state: %w", err)
	}
	for _, p := range state.Plugins() {
		if p.View != nil {
			v.views = append(v.views, p.View(v))
		}
	}
	return v, nil
}

// State returns the current state.
func (v *View) State() *State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Decorations returns the merged decorations of the current state.
func (v *View) Decorations() *DecorationSet {
	return v.decorations(v.State())
}

func (v *View) decorations(state *State) *DecorationSet {
	var sets []*DecorationSet
	for _, p := range state.Plugins() {
		if p.Decorations != nil {
			sets = append(sets, p.Decorations(state))
		}
	}
	return Merge(state.Doc(), sets...)
}

// Read runs fn with the current state and surface while no dispatch can
// re-render the surface underneath it.
func (v *View) Read(fn func(state *State, surface Surface)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.state, v.surface)
}

// Dispatch applies tr, re-renders the surface and notifies plugin views.
func (v *View) Dispatch(tr *Transaction) error {
	if v.destroyed.Load() {
		return ErrViewDestroyed
	}

	v.mu.Lock()
	prev := v.state
	if tr.before != prev {
		if tr.DocChanged() {
			v.mu.Unlock()
			return ErrStaleTransaction
		}
		tr = tr.rebase(prev)
	}
	next := prev.Apply(tr)
	v.state = next
	err := v.surface.Sync(next.Doc(), v.decorations(next))
	views := v.views
	v.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to render state: %w", err)
	}
	for _, pv := range views {
		pv.Update(v, prev, tr)
	}
	return nil
}

// Execute runs cmd against the current state and dispatches the result.
func (v *View) Execute(cmd Command) error {
	tr, err := cmd(v.State())
	if err != nil {
		return err
	}
	return v.Dispatch(tr)
}

// IsDestroyed reports whether Destroy has been called.
func (v *View) IsDestroyed() bool {
	return v.destroyed.Load()
}

// Destroy tears down the plugin views and releases the surface.
func (v *View) Destroy() error {
	if v.destroyed.Swap(true) {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, pv := range v.views {
		pv.Destroy()
	}
	return v.surface.Close()
}
