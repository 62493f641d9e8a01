package pagination

import (
	"errors"
	"log"
	"sync/atomic"

	"case_strategy_editor/services/editor"
)

// Observer watches view updates and schedules at most one recompute per
// frame. It is the plugin view of the pagination extension.
type Observer struct {
	view      *editor.View
	geometry  Geometry
	scheduler FrameScheduler
	renderer  *Renderer
	onResult  func([]Boundary)

	pending   atomic.Bool
	destroyed atomic.Bool
	passes    atomic.Int64
}

// Update decides whether a transaction may have changed rendered heights.
// Overlay transactions are skipped so installing an overlay never triggers
// another pass.
func (o *Observer) Update(view *editor.View, prev *editor.State, tr *editor.Transaction) {
	if IsOverlayUpdate(tr) {
		return
	}
	cur := view.State()
	docChanged := !cur.Doc().Eq(prev.Doc())
	selectionChanged := !cur.Selection().Eq(prev.Selection())
	if !docChanged && !selectionChanged {
		return
	}
	o.Schedule()
}

// Schedule requests a recompute on the next frame unless one is pending.
func (o *Observer) Schedule() {
	if o.destroyed.Load() {
		return
	}
	if !o.pending.CompareAndSwap(false, true) {
		return
	}
	o.scheduler.RequestFrame(o.run)
}

// Passes returns how many measurement passes have run.
func (o *Observer) Passes() int64 {
	return o.passes.Load()
}

// Destroy stops future passes. A frame already queued becomes a no-op.
func (o *Observer) Destroy() {
	o.destroyed.Store(true)
}

func (o *Observer) run() {
	o.pending.Store(false)
	if o.destroyed.Load() || o.view.IsDestroyed() {
		return
	}

	var boundaries []Boundary
	var set *editor.DecorationSet
	o.view.Read(func(state *editor.State, surface editor.Surface) {
		boundaries = CalculateBreaks(state.Doc(), surface, o.geometry)
		set = o.renderer.Decorations(state.Doc(), boundaries)
	})
	o.passes.Add(1)

	if err := o.renderer.Apply(o.view, set); err != nil && !errors.Is(err, editor.ErrViewDestroyed) {
		log.Printf("[PAGINATION] Failed to install overlay: %v", err)
	}
	if o.onResult != nil {
		o.onResult(boundaries)
	}
}
