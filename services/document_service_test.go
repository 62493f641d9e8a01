package services

import (
	"encoding/json"
	"testing"

	"case_strategy_editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContent(t *testing.T) {
	markup := `<h2>Facts</h2>` +
		`<div class="page-break-marker" data-page-break="" contenteditable="false"></div>` +
		`<p onclick="steal()">Body<script>alert(1)</script></p>`

	content, contentJSON, doc, err := NormalizeContent(markup)
	require.NoError(t, err)

	assert.Equal(t, "<h2>Facts</h2><p>Body</p>", content)
	assert.NotContains(t, contentJSON, "page-break")
	assert.Equal(t, 2, doc.ChildCount())

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(contentJSON), &envelope))
	assert.Equal(t, "doc", envelope["type"])
}

func TestCreateAndGetDocument(t *testing.T) {
	database := setupServicesTestDB(t)

	doc, err := CreateDocument(database, "  ", "<p>Hello</p>")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, models.DefaultDocumentTitle, doc.Title)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, models.SaveStatusSaved, doc.SaveStatus)

	got, err := GetDocument(database, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", got.Content)

	_, err = GetDocument(database, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSaveDocument(t *testing.T) {
	database := setupServicesTestDB(t)
	doc, err := CreateDocument(database, "Draft", "<p>one</p>")
	require.NoError(t, err)

	t.Run("unchanged content keeps the version", func(t *testing.T) {
		saved, err := SaveDocument(database, doc.ID, SaveInput{Content: "<p>one</p>"})
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Version)
	})

	t.Run("changed content bumps the version", func(t *testing.T) {
		title := "Renamed"
		saved, err := SaveDocument(database, doc.ID, SaveInput{Title: &title, Content: "<p>two</p>", BaseVersion: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, saved.Version)
		assert.Equal(t, "Renamed", saved.Title)
		assert.NotNil(t, saved.LastSavedAt)
	})

	t.Run("stale base version is rejected", func(t *testing.T) {
		_, err := SaveDocument(database, doc.ID, SaveInput{Content: "<p>three</p>", BaseVersion: 1})
		assert.ErrorIs(t, err, ErrVersionConflict)

		stored, err := GetDocument(database, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "<p>two</p>", stored.Content)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := SaveDocument(database, "missing", SaveInput{Content: "<p>x</p>"})
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestListUpdateAndDeleteDocuments(t *testing.T) {
	database := setupServicesTestDB(t)
	first, err := CreateDocument(database, "First", "<p>a</p>")
	require.NoError(t, err)
	_, err = CreateDocument(database, "Second", "<p>b</p>")
	require.NoError(t, err)

	docs, err := ListDocuments(database, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	require.NoError(t, UpdatePageCount(database, first.ID, 7))
	got, err := GetDocument(database, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.PageCount)
	assert.ErrorIs(t, UpdatePageCount(database, "missing", 2), ErrDocumentNotFound)

	require.NoError(t, DeleteDocument(database, first.ID))
	_, err = GetDocument(database, first.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, DeleteDocument(database, first.ID), ErrDocumentNotFound)
}
