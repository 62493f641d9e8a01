package pagination

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGeometry(t *testing.T) {
	g := DefaultGeometry()
	require.NoError(t, g.Validate())

	assert.Equal(t, 980.0, g.ContentHeight())
	assert.Equal(t, 678.0, g.ContentWidth())
	assert.Equal(t, 1056.0, g.SheetHeightPx())
	assert.Equal(t, 816.0, g.SheetWidthPx())
	assert.Equal(t, 976.0, g.PrintContentHeight())
	assert.Equal(t, 4.0, g.Drift())
}

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Geometry)
	}{
		{"zero page height", func(g *Geometry) { g.PageHeight = 0 }},
		{"negative margin", func(g *Geometry) { g.Margins.Left = -1 }},
		{"margins eat the page", func(g *Geometry) { g.Margins.Top = 600; g.Margins.Bottom = 600 }},
		{"margins eat the column", func(g *Geometry) { g.Margins.Left = 500; g.Margins.Right = 500 }},
		{"missing sheet", func(g *Geometry) { g.Sheet = Sheet{} }},
		{"A4 sheet drifts", func(g *Geometry) { g.Sheet = Sheet{Name: "A4", WidthIn: 8.27, HeightIn: 11.69} }},
		{"page taller than the sheet", func(g *Geometry) { g.PageHeight = 1140 }},
		{"margins eat the sheet", func(g *Geometry) { g.Sheet.HeightIn = 0.5; g.MaxDriftPx = 2000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGeometry()
			tt.mutate(&g)
			assert.ErrorIs(t, g.Validate(), ErrInvalidGeometry)
		})
	}
}

func TestGeometry_DriftTolerance(t *testing.T) {
	g := DefaultGeometry()
	g.MaxDriftPx = 2
	assert.ErrorIs(t, g.Validate(), ErrInvalidGeometry)

	g.PageHeight = 1056
	assert.NoError(t, g.Validate())
	assert.Equal(t, g.PrintContentHeight(), g.ContentHeight())
}

func TestGeometry_ScreenAndPrintPagesAgree(t *testing.T) {
	g := DefaultGeometry()
	require.NoError(t, g.Validate())

	// Breaks are spaced by the content height, not the full page height.
	doc := docOfHeights("500", "500", "500", "500")
	boundaries := CalculateBreaks(doc, laidOut(t, doc), g)
	require.Len(t, boundaries, 2)
	assert.Equal(t, 3, PageCount(boundaries))

	// Each break lands within MaxDriftPx of where the printed page ends.
	extents := Measure(doc, laidOut(t, doc))
	for _, b := range boundaries {
		idx, ok := doc.IndexAt(b.Pos)
		require.True(t, ok)
		printLimit := float64(b.Page-1) * g.PrintContentHeight()
		screenLimit := float64(b.Page-1) * g.ContentHeight()
		assert.InDelta(t, screenLimit, printLimit, float64(b.Page-1)*g.MaxDriftPx)
		assert.Greater(t, extents[idx].Bottom(), screenLimit)
	}
}

func TestGeometry_PageRule(t *testing.T) {
	rule := DefaultGeometry().PageRule()
	assert.Contains(t, rule, "size: 8.5in 11in;")
	assert.Contains(t, rule, "margin: 30px 70px 50px 70px;")
}

func TestPrintStylesheet(t *testing.T) {
	css := PrintStylesheet(DefaultGeometry())

	assert.Contains(t, css, "@page")
	for _, sel := range ArtifactSelectors {
		assert.Contains(t, css, sel)
	}
	hide := HideArtifactsRule()
	assert.Contains(t, hide, "display: none !important")
	require.True(t, strings.Contains(css, hide))
	assert.Less(t, strings.Index(css, hide), strings.Index(css, "@page {"))
}

func TestSurfaceStylesheet(t *testing.T) {
	css := SurfaceStylesheet(DefaultGeometry())
	assert.Contains(t, css, "."+MarkerClass)
	assert.Contains(t, css, "position: absolute")
	assert.Contains(t, css, "818px")
}
