package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"case_strategy_editor/db"
	"case_strategy_editor/services"
	"case_strategy_editor/services/printbridge"

	"github.com/labstack/echo/v4"
)

// DefaultPDFFilename is the download name of ad-hoc exports
const DefaultPDFFilename = "document.pdf"

type generatePDFRequest struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

// GeneratePDFHandler renders posted editor HTML to a PDF download
func GeneratePDFHandler(c echo.Context) error {
	var req generatePDFRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.HTML) == "" {
		return jsonError(c, http.StatusBadRequest, printbridge.ErrMarkupRequired.Error())
	}

	result, err := services.Exports.Export(c.Request().Context(), req.HTML, services.ExportOptions{Title: req.Title})
	if err != nil {
		if errors.Is(err, printbridge.ErrMarkupRequired) {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to generate PDF",
			"details": err.Error(),
		})
	}

	return sendPDF(c, result, DefaultPDFFilename)
}

// ExportDocumentHandler exports a stored draft
func ExportDocumentHandler(c echo.Context) error {
	id := c.Param("id")

	result, doc, err := services.Exports.ExportDocument(c.Request().Context(), db.DB, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			return jsonError(c, http.StatusNotFound, "Document not found")
		case errors.Is(err, printbridge.ErrMarkupRequired):
			return jsonError(c, http.StatusBadRequest, "Document is empty")
		}
		log.Printf("[PDF] Export of document %s failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to generate PDF",
			"details": err.Error(),
		})
	}

	return sendPDF(c, result, PDFFilename(doc.Title))
}

func sendPDF(c echo.Context, result *services.ExportResult, filename string) error {
	h := c.Response().Header()
	h.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if result.PageCount > 0 {
		h.Set("X-Page-Count", strconv.Itoa(result.PageCount))
	}
	if rec := result.Record; rec != nil && rec.IsArchived() {
		h.Set("X-Export-ID", rec.ID)
	}
	return c.Blob(http.StatusOK, "application/pdf", result.PDF)
}

// ArchivedExportHandler downloads a PDF kept by the export archive
func ArchivedExportHandler(c echo.Context) error {
	id := c.Param("id")

	reader, rec, err := services.OpenArchivedExport(c.Request().Context(), db.DB, services.Storage, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExportNotFound):
			return jsonError(c, http.StatusNotFound, "Export not found")
		case errors.Is(err, services.ErrExportNotArchived):
			return jsonError(c, http.StatusGone, "Export is no longer available")
		}
		log.Printf("[PDF] Could not open archived export %s: %v", id, err)
		return jsonError(c, http.StatusInternalServerError, "Failed to load export")
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+DefaultPDFFilename+`"`)
	if rec.PageCount > 0 {
		c.Response().Header().Set("X-Page-Count", strconv.Itoa(rec.PageCount))
	}
	return c.Stream(http.StatusOK, "application/pdf", reader)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PDFFilename turns a draft title into a safe download name
func PDFFilename(title string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "-"), "-.")
	if name == "" {
		return DefaultPDFFilename
	}
	if len(name) > 80 {
		name = strings.TrimRight(name[:80], "-.")
	}
	return name + ".pdf"
}
