package editor

import (
	"fmt"
	"strconv"
	"time"

	"case_strategy_editor/models"
	"case_strategy_editor/services/pagination"
)

// GetPaperStyle is the inline style of the editing sheet. The sheet keeps
// the geometry's width so text wraps exactly as on the layout surface.
func GetPaperStyle(g pagination.Geometry) string {
	return fmt.Sprintf("width: %spx; min-height: %spx; padding: 0 %spx 0 %spx;",
		px(g.PageWidth), px(g.PageHeight), px(g.Margins.Right), px(g.Margins.Left))
}

// GetPageHeight is the page height in pixels, for data attributes
func GetPageHeight(g pagination.Geometry) string {
	return px(g.PageHeight)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveStatusLabel is the text of the toolbar save indicator
func SaveStatusLabel(status string, lastSaved *time.Time, now time.Time) string {
	switch status {
	case models.SaveStatusSaving:
		return "Saving..."
	case models.SaveStatusUnsaved:
		return "Unsaved changes"
	}
	if lastSaved == nil {
		return "Not saved yet"
	}
	return "Saved " + formatRelativeTime(now.Sub(*lastSaved))
}

func formatRelativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		if m := int(d.Minutes()); m > 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case d < 24*time.Hour:
		if h := int(d.Hours()); h > 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	default:
		if days := int(d.Hours() / 24); days > 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	}
}
