package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"case_strategy_editor/db"
	"case_strategy_editor/services"

	"github.com/labstack/echo/v4"
)

type documentRequest struct {
	Title       *string `json:"title"`
	HTML        string  `json:"html"`
	BaseVersion int     `json:"base_version"`
}

type saveResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Version int    `json:"version"`
}

// CreateDocumentHandler stores a new draft
func CreateDocumentHandler(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	title := ""
	if req.Title != nil {
		title = *req.Title
	}

	doc, err := services.CreateDocument(db.DB, title, req.HTML)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to create document")
	}
	return c.JSON(http.StatusCreated, saveResponse{ID: doc.ID, Status: doc.SaveStatus, Version: doc.Version})
}

// ListDocumentsHandler lists drafts, most recently updated first
func ListDocumentsHandler(c echo.Context) error {
	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	docs, err := services.ListDocuments(db.DB, limit)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, docs)
}

// GetDocumentHandler returns a draft
func GetDocumentHandler(c echo.Context) error {
	doc, err := services.GetDocument(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return jsonError(c, http.StatusNotFound, "Document not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to load document")
	}
	return c.JSON(http.StatusOK, doc)
}

// SaveDocumentHandler is the autosave target
func SaveDocumentHandler(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}

	doc, err := services.SaveDocument(db.DB, c.Param("id"), services.SaveInput{
		Title:       req.Title,
		Content:     req.HTML,
		BaseVersion: req.BaseVersion,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			return jsonError(c, http.StatusNotFound, "Document not found")
		case errors.Is(err, services.ErrVersionConflict):
			return jsonError(c, http.StatusConflict, "Document was changed by another session")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to save document")
	}
	return c.JSON(http.StatusOK, saveResponse{ID: doc.ID, Status: doc.SaveStatus, Version: doc.Version})
}

// DeleteDocumentHandler removes a draft
func DeleteDocumentHandler(c echo.Context) error {
	if err := services.DeleteDocument(db.DB, c.Param("id")); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return jsonError(c, http.StatusNotFound, "Document not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to delete document")
	}
	return c.NoContent(http.StatusNoContent)
}
