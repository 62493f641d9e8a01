package pagination

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stackSurface lays top-level blocks out one below the other. Heights come
// from heightOf; widgets take no room, as on the real surface.
type stackSurface struct {
	mu       sync.Mutex
	heightOf func(n *document.Node) float64
	boxes    map[int]editor.Box
	missing  map[int]bool
	syncs    int
	reads    int
	closed   int
	lastDeco *editor.DecorationSet
}

func newStackSurface(heightOf func(n *document.Node) float64) *stackSurface {
	return &stackSurface{heightOf: heightOf, missing: map[int]bool{}}
}

func (s *stackSurface) Sync(doc *document.Document, decorations *editor.DecorationSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	s.lastDeco = decorations
	s.boxes = map[int]editor.Box{}
	top := 0.0
	doc.ForEach(func(n *document.Node, pos int, _ int) {
		h := s.heightOf(n)
		s.boxes[pos] = editor.Box{Top: top, Height: h}
		top += h
	})
	return nil
}

func (s *stackSurface) NodeBox(pos int) (editor.Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.missing[pos] {
		return editor.Box{}, false
	}
	b, ok := s.boxes[pos]
	return b, ok
}

func (s *stackSurface) Close() error {
	s.closed++
	return nil
}

// heightFromText reads a paragraph's text as its pixel height.
func heightFromText(n *document.Node) float64 {
	h, err := strconv.ParseFloat(n.TextContent(), 64)
	if err != nil {
		return 0
	}
	return h
}

func docOfHeights(heights ...string) *document.Document {
	blocks := make([]*document.Node, 0, len(heights))
	for _, h := range heights {
		blocks = append(blocks, document.Paragraph(document.Text(h)))
	}
	return document.New(blocks...)
}

func laidOut(t *testing.T, doc *document.Document) *stackSurface {
	t.Helper()
	s := newStackSurface(heightFromText)
	require.NoError(t, s.Sync(doc, editor.EmptyDecorations))
	return s
}

func TestCalculateBreaks_NoBoundaryWithinOnePage(t *testing.T) {
	g := DefaultGeometry()
	doc := docOfHeights("200", "300", "400", "80")
	boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
	assert.Empty(t, boundaries)
	assert.Equal(t, 1, PageCount(boundaries))
}

func TestCalculateBreaks_FirstBoundaryAtCrossingBlock(t *testing.T) {
	g := DefaultGeometry()
	doc := docOfHeights("400", "400", "400", "100")
	positions := doc.Positions()

	boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
	require.Len(t, boundaries, 1)
	assert.Equal(t, Boundary{Pos: positions[2], Page: 2}, boundaries[0])
}

func TestCalculateBreaks_Idempotent(t *testing.T) {
	g := DefaultGeometry()
	doc := docOfHeights("700", "700", "700", "700", "700")
	surface := laidOut(t, doc)

	first := CalculateBreaks(doc, surface, g)
	second := CalculateBreaks(doc, surface, g)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestCalculateBreaks_Monotonic(t *testing.T) {
	g := DefaultGeometry()
	doc := docOfHeights("500", "900", "300", "2500", "100", "1000", "40", "1200")
	boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
	require.NotEmpty(t, boundaries)

	for i := 1; i < len(boundaries); i++ {
		prev, cur := boundaries[i-1], boundaries[i]
		assert.LessOrEqual(t, prev.Pos, cur.Pos)
		assert.Less(t, prev.Page, cur.Page)
		if prev.Pos == cur.Pos {
			continue
		}
		assert.Less(t, prev.Pos, cur.Pos)
	}
	for _, b := range boundaries {
		_, ok := doc.IndexAt(b.Pos)
		assert.True(t, ok, "boundary %d must sit on a block start", b.Pos)
	}
}

func TestCalculateBreaks_OversizedBlock(t *testing.T) {
	g := DefaultGeometry()

	t.Run("block at the top of the page", func(t *testing.T) {
		doc := docOfHeights("2650")
		boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
		// Bottom 2650 passes limits 980 and 1960 only.
		assert.Equal(t, []Boundary{{Pos: 0, Page: 2}, {Pos: 0, Page: 3}}, boundaries)
	})

	t.Run("block starting mid page", func(t *testing.T) {
		doc := docOfHeights("954", "2650")
		pos := doc.Positions()[1]
		boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
		// ceil(2650 / 980) = 3 boundaries, all at the block's own start.
		require.Len(t, boundaries, 3)
		for i, b := range boundaries {
			assert.Equal(t, pos, b.Pos)
			assert.Equal(t, i+2, b.Page)
		}
	})
}

func TestCalculateBreaks_SkipsMissingAndZeroHeightBlocks(t *testing.T) {
	g := DefaultGeometry()
	doc := docOfHeights("900", "0", "500", "100")
	surface := laidOut(t, doc)
	positions := doc.Positions()

	surface.missing[positions[2]] = true
	boundaries := CalculateBreaks(doc, surface, g)
	require.Len(t, boundaries, 1)
	assert.Equal(t, positions[3], boundaries[0].Pos)

	extents := Measure(doc, surface)
	assert.Len(t, extents, 2)
}

func TestBreaks_NonPositivePageHeight(t *testing.T) {
	assert.Nil(t, Breaks([]Extent{{Pos: 0, Top: 0, Height: 5000}}, 0))
}

// newPaginatedView wires a view with the pagination extension on a stack
// surface and a manual scheduler.
func newPaginatedView(t *testing.T, doc *document.Document) (*editor.View, *Extension, *ManualScheduler, *stackSurface) {
	t.Helper()
	sched := NewManualScheduler()
	ext := NewExtension(DefaultGeometry(), sched)
	surface := newStackSurface(heightFromText)
	view, err := editor.NewView(editor.NewState(doc, ext.Plugin()), surface)
	require.NoError(t, err)
	return view, ext, sched, surface
}

func TestObserver_CoalescesEditsWithinFrame(t *testing.T) {
	view, ext, sched, _ := newPaginatedView(t, docOfHeights("100"))

	for i := 0; i < 10; i++ {
		require.NoError(t, view.Execute(editor.InsertBlock(view.State().Doc().ChildCount(), document.Paragraph(document.Text("300")))))
	}
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, 1, sched.Flush())
	assert.Equal(t, int64(1), ext.Observer().Passes())

	// The overlay transaction must not schedule another pass.
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 3, Overlay(view.State()).Len())
}

func TestObserver_SelectionChangeTriggersPass(t *testing.T) {
	view, ext, sched, _ := newPaginatedView(t, docOfHeights("100", "200"))

	require.NoError(t, view.Execute(editor.SetSelection(editor.Caret(3))))
	sched.Flush()
	assert.Equal(t, int64(1), ext.Observer().Passes())
}

func TestObserver_NoPassWithoutChange(t *testing.T) {
	view, ext, sched, _ := newPaginatedView(t, docOfHeights("100"))

	require.NoError(t, view.Dispatch(view.State().Tr()))
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, int64(0), ext.Observer().Passes())
}

func TestObserver_SkipsDestroyedView(t *testing.T) {
	view, ext, sched, surface := newPaginatedView(t, docOfHeights("100"))

	require.NoError(t, view.Execute(editor.AppendText(0, "0")))
	readsBefore := surface.reads
	require.NoError(t, view.Destroy())

	sched.Flush()
	assert.Equal(t, int64(0), ext.Observer().Passes())
	assert.Equal(t, readsBefore, surface.reads)
	assert.Equal(t, 1, surface.closed)
}

func TestObserver_EditAfterPassSchedulesAgain(t *testing.T) {
	view, ext, sched, _ := newPaginatedView(t, docOfHeights("100"))

	require.NoError(t, view.Execute(editor.InsertBlock(1, document.Paragraph(document.Text("1200")))))
	sched.Flush()
	require.NoError(t, view.Execute(editor.InsertBlock(2, document.Paragraph(document.Text("1200")))))
	sched.Flush()

	assert.Equal(t, int64(2), ext.Observer().Passes())
	assert.Equal(t, 2, Overlay(view.State()).Len())
}

func TestOverlay_NeverSerialized(t *testing.T) {
	view, _, sched, surface := newPaginatedView(t, docOfHeights("100"))
	require.NoError(t, view.Execute(editor.SetContent(docOfHeights("900", "900", "900"))))

	beforeHTML := view.State().Doc().HTML()
	beforeJSON, err := json.Marshal(view.State().Doc())
	require.NoError(t, err)

	sched.Flush()
	require.Equal(t, 2, Overlay(view.State()).Len())
	assert.Equal(t, 2, surface.lastDeco.Len())

	afterJSON, err := json.Marshal(view.State().Doc())
	require.NoError(t, err)
	assert.Equal(t, beforeHTML, view.State().Doc().HTML())
	assert.Equal(t, string(beforeJSON), string(afterJSON))
	assert.NotContains(t, beforeHTML, MarkerClass)
}

func TestOverlay_MappedThroughEdits(t *testing.T) {
	view, _, sched, _ := newPaginatedView(t, docOfHeights("100"))
	require.NoError(t, view.Execute(editor.SetContent(docOfHeights("900", "900"))))
	sched.Flush()

	overlay := Overlay(view.State())
	require.Equal(t, 1, overlay.Len())
	before := overlay.All()[0].Pos

	inserted := document.Paragraph(document.Text("1"))
	require.NoError(t, view.Execute(editor.InsertBlock(0, inserted)))
	after := Overlay(view.State()).All()[0].Pos
	assert.Equal(t, before+inserted.Size(), after)
}

func TestDecoratedHTML(t *testing.T) {
	doc := docOfHeights("900", "900")
	positions := doc.Positions()
	set := NewRenderer().Decorations(doc, []Boundary{{Pos: positions[1], Page: 2}})

	out := DecoratedHTML(doc, set)
	marker := strings.Index(out, MarkerClass)
	second := strings.Index(out, `data-pm-pos="`+strconv.Itoa(positions[1])+`"`)
	require.NotEqual(t, -1, marker)
	require.NotEqual(t, -1, second)
	assert.Less(t, marker, second)
	assert.Contains(t, out, `contenteditable="false"`)
	assert.Contains(t, out, `data-label="Page 2"`)

	// Reading the rendered surface back drops the widgets.
	parsed, err := document.ParseHTML(out)
	require.NoError(t, err)
	assert.True(t, parsed.Eq(doc))
}

func TestTimerScheduler_CoalescesIntoOneFrame(t *testing.T) {
	sched := NewTimerScheduler(50 * time.Millisecond)
	defer sched.Stop()

	ext := NewExtension(DefaultGeometry(), sched)
	surface := newStackSurface(heightFromText)
	view, err := editor.NewView(editor.NewState(docOfHeights("100"), ext.Plugin()), surface)
	require.NoError(t, err)
	defer view.Destroy()

	for i := 0; i < 20; i++ {
		require.NoError(t, view.Execute(editor.AppendText(0, "0")))
	}
	assert.Eventually(t, func() bool {
		return ext.Observer().Passes() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int64(1), ext.Observer().Passes())
}

func TestTimerScheduler_StopDropsQueue(t *testing.T) {
	sched := NewTimerScheduler(time.Millisecond)
	ran := make(chan struct{}, 1)
	sched.RequestFrame(func() { ran <- struct{}{} })
	sched.Stop()
	sched.RequestFrame(func() { ran <- struct{}{} })

	select {
	case <-ran:
		t.Fatal("callback ran after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}
