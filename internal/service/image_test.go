package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageStoreSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, []byte("fake image bytes"), "photo.PNG")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(ref))

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalImageStoreUniqueReferences(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, []byte("a"), "a.jpg")
	require.NoError(t, err)
	second, err := store.Save(ctx, []byte("b"), "a.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalImageStoreRejectsUnsupportedType(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), []byte("not an image"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
}

func TestLocalImageStoreDeleteRejectsPathTraversal(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Delete(context.Background(), "../escape.png"))
	assert.Error(t, store.Delete(context.Background(), ""))
}

func TestLocalImageStoreDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "gone.png"))
}
