// Package pagination makes an infinite-scroll document look paginated. The
// Observer decides when layout must be re-measured, CalculateBreaks walks the
// rendered top-level blocks against the page Geometry, and the Renderer turns
// the resulting boundaries into inert page-break widgets.
//
// The same Geometry value drives the print bridge, so on-screen pages and
// exported PDF pages share one set of numbers.
package pagination

import (
	"errors"
	"fmt"
	"math"
)

// CSSPixelsPerInch is the fixed CSS reference resolution.
const CSSPixelsPerInch = 96.0

// ErrInvalidGeometry is wrapped by every Validate failure.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// Margins are page margins in CSS pixels.
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
}

// Sheet is the physical export sheet in inches.
type Sheet struct {
	Name     string  `json:"name" yaml:"name"`
	WidthIn  float64 `json:"width_in" yaml:"width_in"`
	HeightIn float64 `json:"height_in" yaml:"height_in"`
}

// Geometry is the page contract shared by the live editor and the print
// bridge. PageHeight is the editor page including its vertical margins;
// synthetic breaks fall every ContentHeight, which must match the content
// height the print @page rule leaves on the sheet.
type Geometry struct {
	PageHeight float64 `json:"page_height" yaml:"page_height"`
	PageWidth  float64 `json:"page_width" yaml:"page_width"`
	Margins    Margins `json:"margins" yaml:"margins"`
	Sheet      Sheet   `json:"sheet" yaml:"sheet"`
	// MaxDriftPx bounds the difference between ContentHeight and
	// PrintContentHeight before the two pagination paths are considered out
	// of agreement.
	MaxDriftPx float64 `json:"max_drift_px" yaml:"max_drift_px"`
}

// DefaultGeometry is the editor page: 818x1060 px, margins 30/50/70/70 px,
// exported on US Letter.
func DefaultGeometry() Geometry {
	return Geometry{
		PageHeight: 1060,
		PageWidth:  818,
		Margins:    Margins{Top: 30, Bottom: 50, Left: 70, Right: 70},
		Sheet:      Sheet{Name: "Letter", WidthIn: 8.5, HeightIn: 11},
		MaxDriftPx: 8,
	}
}

// ContentHeight is the height of one on-screen page after vertical margins.
// It is the interval of the break walk.
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - g.Margins.Top - g.Margins.Bottom
}

// ContentWidth is the text column width left after horizontal margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.Margins.Left - g.Margins.Right
}

// SheetHeightPx is the export sheet height in CSS pixels.
func (g Geometry) SheetHeightPx() float64 {
	return g.Sheet.HeightIn * CSSPixelsPerInch
}

// SheetWidthPx is the export sheet width in CSS pixels.
func (g Geometry) SheetWidthPx() float64 {
	return g.Sheet.WidthIn * CSSPixelsPerInch
}

// PrintContentHeight is the height the @page rule leaves for content on one
// export sheet.
func (g Geometry) PrintContentHeight() float64 {
	return g.SheetHeightPx() - g.Margins.Top - g.Margins.Bottom
}

// Drift is how far one on-screen page and one printed page disagree in
// content height, in CSS pixels.
func (g Geometry) Drift() float64 {
	return math.Abs(g.PrintContentHeight() - g.ContentHeight())
}

// Validate checks the geometry is usable and that both pagination paths
// agree within MaxDriftPx.
func (g Geometry) Validate() error {
	if g.PageHeight <= 0 || g.PageWidth <= 0 {
		return fmt.Errorf("%w: page size %.0fx%.0f", ErrInvalidGeometry, g.PageWidth, g.PageHeight)
	}
	m := g.Margins
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return fmt.Errorf("%w: negative margin", ErrInvalidGeometry)
	}
	if g.ContentHeight() <= 0 {
		return fmt.Errorf("%w: vertical margins %.0f+%.0f exceed page height %.0f", ErrInvalidGeometry, m.Top, m.Bottom, g.PageHeight)
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("%w: horizontal margins %.0f+%.0f exceed page width %.0f", ErrInvalidGeometry, m.Left, m.Right, g.PageWidth)
	}
	if g.Sheet.WidthIn <= 0 || g.Sheet.HeightIn <= 0 {
		return fmt.Errorf("%w: sheet %.2fin x %.2fin", ErrInvalidGeometry, g.Sheet.WidthIn, g.Sheet.HeightIn)
	}
	if g.PrintContentHeight() <= 0 {
		return fmt.Errorf("%w: vertical margins %.0f+%.0f exceed sheet height %.0fpx", ErrInvalidGeometry, m.Top, m.Bottom, g.SheetHeightPx())
	}
	if g.Drift() > g.MaxDriftPx {
		return fmt.Errorf("%w: printed content height %.0fpx and on-screen content height %.0fpx differ by %.0fpx (max %.0fpx)",
			ErrInvalidGeometry, g.PrintContentHeight(), g.ContentHeight(), g.Drift(), g.MaxDriftPx)
	}
	return nil
}

// PageRule renders the CSS @page rule for the export sheet. Margins are
// written in the same pixel values the editor uses.
func (g Geometry) PageRule() string {
	m := g.Margins
	return fmt.Sprintf("@page {\n  size: %sin %sin;\n  margin: %spx %spx %spx %spx;\n}\n",
		num(g.Sheet.WidthIn), num(g.Sheet.HeightIn),
		num(m.Top), num(m.Right), num(m.Bottom), num(m.Left))
}

// num formats a float without trailing zeros.
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
