package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"case_strategy_editor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "%PDF-1.4 hello"
	key := "exports/adhoc/file.pdf"

	t.Run("Put creates file", func(t *testing.T) {
		result, err := storage.Put(ctx, strings.NewReader(content), key, "application/pdf", int64(len(content)))
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "file.pdf", result.FileName)
		assert.Equal(t, int64(len(content)), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Get missing file", func(t *testing.T) {
		_, _, err := storage.Get(ctx, "exports/adhoc/missing.pdf")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("Signed URL is the local path", func(t *testing.T) {
		signed, err := storage.GetSignedURL(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "/"+filepath.ToSlash(filepath.Join(tempDir, key)), signed)
	})

	t.Run("Delete removes file and tolerates missing ones", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, storage.Delete(ctx, key))
	})

	assert.Equal(t, "local", storage.Name())
}

func TestInitializeStorage_FallsBackToLocal(t *testing.T) {
	prev := Storage
	defer func() { Storage = prev }()

	InitializeStorage(&config.Config{UploadDir: t.TempDir(), R2AccountID: "acct"})
	assert.Equal(t, "local", Storage.Name())
}

func TestGenerateExportKey(t *testing.T) {
	now := time.Unix(1700000000, 0)

	key := GenerateExportKey("doc-1", now)
	assert.True(t, strings.HasPrefix(key, "exports/documents/doc-1/"))
	assert.True(t, strings.HasSuffix(key, "_1700000000.pdf"))

	adhoc := GenerateExportKey("", now)
	assert.True(t, strings.HasPrefix(adhoc, "exports/adhoc/"))
	assert.NotEqual(t, adhoc, GenerateExportKey("", now))
}
