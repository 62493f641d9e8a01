package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/db"
	"case_strategy_editor/models"
	"case_strategy_editor/services"
	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"
	"case_strategy_editor/services/pagination"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.Document{}, &models.ExportRecord{})
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB
	t.Cleanup(func() { db.DB = nil })

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment: "test",
		Geometry:    pagination.DefaultGeometry(),
	})

	return e, c, rec
}

// fakeRenderer stands in for the browser bridge
type fakeRenderer struct {
	mu     sync.Mutex
	pdf    []byte
	err    error
	markup []string
}

func (f *fakeRenderer) RenderTitled(_ context.Context, markup, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markup = append(f.markup, markup)
	return f.pdf, f.err
}

func installExports(t *testing.T, database *gorm.DB, r *fakeRenderer) {
	prev := services.Exports
	services.Exports = services.NewExportService(r, "chromedp", pagination.DefaultGeometry(), database)
	t.Cleanup(func() { services.Exports = prev })
}

// heightSurface stacks blocks vertically; a block's text is its height
type heightSurface struct {
	mu    sync.Mutex
	boxes map[int]editor.Box
}

func (s *heightSurface) Sync(doc *document.Document, _ *editor.DecorationSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = map[int]editor.Box{}
	top := 0.0
	doc.ForEach(func(n *document.Node, pos int, _ int) {
		h, _ := strconv.ParseFloat(n.TextContent(), 64)
		s.boxes[pos] = editor.Box{Top: top, Height: h}
		top += h
	})
	return nil
}

func (s *heightSurface) NodeBox(pos int) (editor.Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boxes[pos]
	return b, ok
}

func (s *heightSurface) Close() error { return nil }

func installPaginator(t *testing.T, open services.SurfaceFactory) {
	prev := services.Paginator
	if open == nil {
		open = func(context.Context) (editor.Surface, error) { return &heightSurface{}, nil }
	}
	services.Paginator = services.NewPaginationService(pagination.DefaultGeometry(), time.Millisecond, time.Second, open)
	t.Cleanup(func() { services.Paginator = prev })
}

// onePagePDF is a minimal valid single page Letter PDF
func onePagePDF() []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}
