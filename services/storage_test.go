package services

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	ctx := t.Context()
	content := "hello storage"
	key := "cases/c1/file.txt"

	t.Run("Put creates file", func(t *testing.T) {
		result, err := storage.Put(ctx, key, strings.NewReader(content), "text/plain", int64(len(content)))
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "file.txt", result.FileName)
		assert.EqualValues(t, len(content), result.FileSize)

		_, err = os.Stat(filepath.Join(dir, key))
		assert.NoError(t, err)
	})

	t.Run("Get returns contents and type", func(t *testing.T) {
		r, contentType, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer r.Close()
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, content, string(b))
		assert.Equal(t, "text/plain", contentType)
	})

	t.Run("SignedURL is empty", func(t *testing.T) {
		url, err := storage.SignedURL(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("Delete removes file and tolerates repeats", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(dir, key))
		assert.True(t, os.IsNotExist(err))
		assert.NoError(t, storage.Delete(ctx, key))
	})

	t.Run("Keys cannot escape the base dir", func(t *testing.T) {
		_, err := storage.Put(ctx, "../outside.txt", strings.NewReader("x"), "text/plain", 1)
		assert.Error(t, err)
		_, _, err = storage.Get(ctx, "../../etc/passwd")
		assert.Error(t, err)
	})
}

func TestGenerateStorageKeys(t *testing.T) {
	a := GenerateCaseDocumentKey("case-1", "Brief.PDF")
	b := GenerateCaseDocumentKey("case-1", "Brief.PDF")
	assert.True(t, strings.HasPrefix(a, "cases/case-1/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"), "extension is lowercased")
	assert.NotEqual(t, a, b)

	assert.True(t, strings.HasPrefix(GenerateNoteDocumentKey("n1", "x.txt"), "notes/n1/"))
	assert.True(t, strings.HasPrefix(GenerateUserDocumentKey("u1", "x"), "users/u1/"))
}

func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeForExt(".PDF"))
	assert.Equal(t, "image/jpeg", contentTypeForExt(".jpeg"))
	assert.Equal(t, "application/octet-stream", contentTypeForExt(".bin"))
}
