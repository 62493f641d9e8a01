package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"case_strategy_editor/db"
	"case_strategy_editor/services"
	"case_strategy_editor/services/printbridge"

	"github.com/labstack/echo/v4"
)

type paginateRequest struct {
	HTML string `json:"html"`
	// DocumentID, when set, records the resulting page count on the draft
	DocumentID string `json:"document_id"`
}

// PaginateHandler lays posted HTML out on the server surface and returns
// its page boundaries
func PaginateHandler(c echo.Context) error {
	var req paginateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.HTML) == "" {
		return jsonError(c, http.StatusBadRequest, printbridge.ErrMarkupRequired.Error())
	}

	result, err := services.Paginator.Paginate(c.Request().Context(), req.HTML)
	if err != nil {
		if errors.Is(err, printbridge.ErrMarkupRequired) {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		log.Printf("[PAGINATION] Pagination failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to paginate document",
			"details": err.Error(),
		})
	}

	if req.DocumentID != "" && db.DB != nil {
		if err := services.UpdatePageCount(db.DB, req.DocumentID, result.Pages); err != nil {
			log.Printf("[PAGINATION] Could not record page count for %s: %v", req.DocumentID, err)
		}
	}

	return c.JSON(http.StatusOK, result)
}

// GeometryHandler returns the page geometry shared by the editor, the
// layout surface and the print stylesheet
func GeometryHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Paginator.Geometry())
}
