package handlers

import (
	"errors"
	"net/http"

	"case_strategy_editor/config"
	"case_strategy_editor/db"
	"case_strategy_editor/services"
	"case_strategy_editor/templates/pages"

	"github.com/labstack/echo/v4"
)

// EditorHandler opens a blank draft. It is stored on the first autosave.
func EditorHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)
	return render(c, pages.Editor(pages.NewEditorPage(nil, cfg.Geometry, cfg.FontStylesheet)))
}

// DocumentEditorHandler opens a stored draft
func DocumentEditorHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	doc, err := services.GetDocument(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return c.String(http.StatusNotFound, "Document not found")
		}
		return c.String(http.StatusInternalServerError, "Failed to load document")
	}
	return render(c, pages.Editor(pages.NewEditorPage(doc, cfg.Geometry, cfg.FontStylesheet)))
}
