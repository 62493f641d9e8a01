package pagination

import (
	"case_strategy_editor/services/editor"
)

// Extension bundles the pagination plugin with its configuration.
type Extension struct {
	geometry  Geometry
	scheduler FrameScheduler
	renderer  *Renderer
	onResult  func([]Boundary)
	observer  *Observer
}

// Option configures an Extension.
type Option func(*Extension)

// WithRenderer replaces the default widget renderer.
func WithRenderer(r *Renderer) Option {
	return func(e *Extension) { e.renderer = r }
}

// OnResult registers a callback receiving the boundaries of every pass.
func OnResult(fn func([]Boundary)) Option {
	return func(e *Extension) { e.onResult = fn }
}

// NewExtension creates the pagination extension for one editor view.
func NewExtension(g Geometry, scheduler FrameScheduler, opts ...Option) *Extension {
	e := &Extension{geometry: g, scheduler: scheduler, renderer: NewRenderer()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observer returns the observer created for the view, or nil before the
// view exists.
func (e *Extension) Observer() *Observer {
	return e.observer
}

// Plugin returns the editor plugin. Its state is the current overlay: an
// overlay transaction replaces it wholesale, any other transaction maps it
// through the edit.
func (e *Extension) Plugin() *editor.Plugin {
	return &editor.Plugin{
		Key: PluginKey,
		Init: func(*editor.State) any {
			return editor.EmptyDecorations
		},
		Apply: func(tr *editor.Transaction, value any, state *editor.State) any {
			if update, ok := tr.Meta(PluginKey).(overlayUpdate); ok {
				return update.decorations
			}
			set, _ := value.(*editor.DecorationSet)
			if set == nil {
				return editor.EmptyDecorations
			}
			return set.Map(tr.Mapping(), state.Doc())
		},
		Decorations: Overlay,
		View: func(view *editor.View) editor.PluginView {
			e.observer = &Observer{
				view:      view,
				geometry:  e.geometry,
				scheduler: e.scheduler,
				renderer:  e.renderer,
				onResult:  e.onResult,
			}
			return e.observer
		},
	}
}
