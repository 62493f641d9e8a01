package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/services/printbridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStackPaginator(surface *stackSurface) *PaginationService {
	return NewPaginationService(pagination.DefaultGeometry(), time.Millisecond, time.Second,
		func(context.Context) (editor.Surface, error) { return surface, nil })
}

func TestPaginationService_Paginate(t *testing.T) {
	surface := &stackSurface{}
	svc := newStackPaginator(surface)

	result, err := svc.Paginate(context.Background(), "<p>650</p><p>650</p><p>650</p><p>650</p>")
	require.NoError(t, err)

	doc, err := document.ParseHTML("<p>650</p><p>650</p><p>650</p><p>650</p>")
	require.NoError(t, err)
	positions := doc.Positions()

	assert.Equal(t, []pagination.Boundary{
		{Pos: positions[1], Page: 2},
		{Pos: positions[3], Page: 3},
	}, result.Boundaries)
	assert.Equal(t, []int{1, 3}, result.BlockIndexes)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, pagination.DefaultGeometry(), result.Geometry)
	assert.Equal(t, 1, surface.closed)
}

func TestPaginationService_SinglePage(t *testing.T) {
	surface := &stackSurface{}
	result, err := newStackPaginator(surface).Paginate(context.Background(), "<p></p>")
	require.NoError(t, err)
	assert.Empty(t, result.Boundaries)
	assert.NotNil(t, result.Boundaries)
	assert.Equal(t, 1, result.Pages)
}

func TestPaginationService_Errors(t *testing.T) {
	svc := newStackPaginator(&stackSurface{})
	_, err := svc.Paginate(context.Background(), "  ")
	assert.ErrorIs(t, err, printbridge.ErrMarkupRequired)

	boom := errors.New("no chrome")
	failing := NewPaginationService(pagination.DefaultGeometry(), time.Millisecond, time.Second,
		func(context.Context) (editor.Surface, error) { return nil, boom })
	_, err = failing.Paginate(context.Background(), "<p>1</p>")
	assert.ErrorIs(t, err, boom)
}

func TestPaginationService_Timeout(t *testing.T) {
	surface := &stackSurface{}
	// A frame interval longer than the timeout means the pass never runs.
	svc := NewPaginationService(pagination.DefaultGeometry(), time.Hour, 20*time.Millisecond,
		func(context.Context) (editor.Surface, error) { return surface, nil })

	_, err := svc.Paginate(context.Background(), "<p>1</p>")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, surface.closed)
}

type fakeSession struct {
	alive  bool
	tabs   int
	closed int
}

func (f *fakeSession) NewTab() (context.Context, context.CancelFunc) {
	f.tabs++
	return context.WithCancel(context.Background())
}

func (f *fakeSession) Alive() bool { return f.alive }

func (f *fakeSession) Close() { f.closed++ }

// newFakeBrowser returns a shared browser whose starts are recorded and
// whose tabs open through open.
func newFakeBrowser(open func(tab context.Context, cancel context.CancelFunc) (editor.Surface, error)) (*sharedBrowser, *[]*fakeSession) {
	var started []*fakeSession
	b := &sharedBrowser{
		start: func(ctx context.Context) (tabSource, error) {
			s := &fakeSession{alive: true}
			started = append(started, s)
			return s, nil
		},
		open: open,
	}
	return b, &started
}

func openStack(context.Context, context.CancelFunc) (editor.Surface, error) {
	return &stackSurface{}, nil
}

func TestSharedBrowser_ReusesSession(t *testing.T) {
	b, started := newFakeBrowser(openStack)

	for i := 0; i < 3; i++ {
		_, err := b.Surface(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, *started, 1)
	assert.Equal(t, 3, (*started)[0].tabs)

	b.Shutdown()
	assert.Equal(t, 1, (*started)[0].closed)
}

func TestSharedBrowser_RestartsDeadSession(t *testing.T) {
	b, started := newFakeBrowser(openStack)

	_, err := b.Surface(context.Background())
	require.NoError(t, err)
	(*started)[0].alive = false

	_, err = b.Surface(context.Background())
	require.NoError(t, err)
	require.Len(t, *started, 2)
	assert.Equal(t, 1, (*started)[0].closed)
	assert.Equal(t, 1, (*started)[1].tabs)
}

func TestSharedBrowser_FailedTabDropsSession(t *testing.T) {
	fail := true
	b, started := newFakeBrowser(func(tab context.Context, cancel context.CancelFunc) (editor.Surface, error) {
		if fail {
			cancel()
			return nil, errors.New("websocket closed")
		}
		return &stackSurface{}, nil
	})

	_, err := b.Surface(context.Background())
	require.Error(t, err)
	require.Len(t, *started, 1)
	assert.Equal(t, 1, (*started)[0].closed)

	fail = false
	_, err = b.Surface(context.Background())
	require.NoError(t, err)
	assert.Len(t, *started, 2)
}

func TestSharedBrowser_OpenBoundedByCaller(t *testing.T) {
	b, started := newFakeBrowser(func(tab context.Context, cancel context.CancelFunc) (editor.Surface, error) {
		<-tab.Done()
		return nil, tab.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Surface(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The caller ran out of time; the browser itself is kept.
	require.Len(t, *started, 1)
	assert.Equal(t, 0, (*started)[0].closed)
}

func TestSharedBrowser_StartError(t *testing.T) {
	boom := errors.New("no chrome")
	var gotDeadline bool
	b := &sharedBrowser{
		start: func(ctx context.Context) (tabSource, error) {
			_, gotDeadline = ctx.Deadline()
			return nil, boom
		},
		open: openStack,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := b.Surface(ctx)
	assert.ErrorIs(t, err, boom)
	assert.True(t, gotDeadline)
	assert.Nil(t, b.session)
}
