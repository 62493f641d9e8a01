package services

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"case_strategy_editor/models"
	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(&models.Document{}, &models.ExportRecord{}))
	return database
}

// testPDF builds a minimal valid PDF with the given number of pages of
// width x height points.
func testPDF(pages int, width, height float64) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += strconv.Itoa(3+i) + " 0 R "
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> >>", width, height))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// stackSurface stacks top-level blocks vertically; a paragraph's text is
// its height in pixels.
type stackSurface struct {
	mu     sync.Mutex
	boxes  map[int]editor.Box
	closed int
}

func (s *stackSurface) Sync(doc *document.Document, _ *editor.DecorationSet) error {
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

func (s *stackSurface) NodeBox(pos int) (editor.Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boxes[pos]
	return b, ok
}

func (s *stackSurface) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}
