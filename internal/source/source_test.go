package source

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestKey(t *testing.T) {
	tests := []struct {
		path string
		page int
		key  string
	}{
		{"slides/a.png", 0, "slides/a.png"},
		{"deck.pdf", 3, "deck.pdf#3"},
		{"odd#name.png", 0, "odd#name.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, Key(tt.path, tt.page))
		path, page := ParseKey(tt.key)
		assert.Equal(t, tt.path, path)
		assert.Equal(t, tt.page, page)
	}
}

func TestImageSourceGlob(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 3)
	writePNG(t, filepath.Join(dir, "a.png"), 8, 6)
	writePNG(t, filepath.Join(dir, "nested", "c.png"), 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	src, err := NewImageSource(filepath.Join(dir, "**", "*.png"))
	require.NoError(t, err)
	assert.Equal(t, 3, src.PageCount())
	assert.Equal(t, filepath.Join(dir, "a.png"), src.Paths()[0])

	w, h, err := src.GetPageDimensions(0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 6.0, h)

	flat, err := NewImageSource(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, flat.PageCount())

	_, err = NewImageSource(filepath.Join(dir, "*.jpg"))
	assert.Error(t, err)

	_, err = src.RenderPage(5, 0)
	assert.Error(t, err)
}

func TestResolverAndLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "slides", "01.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "slides", "02.png"), 6, 2)

	r := Resolver{Dir: dir}
	assert.Equal(t, filepath.Join(dir, "x.png"), r.Path("x.png"))
	assert.Equal(t, "/abs/x.png", r.Path("/abs/x.png"))

	keys, err := r.Expand("slides/*.png")
	require.NoError(t, err)
	require.Len(t, keys, 2)

	assets, err := Load(context.Background(), append(keys, keys[0]), 0, 2)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, 6, assets[keys[1]].Bounds().Dx())

	_, err = Load(context.Background(), []string{filepath.Join(dir, "missing.png")}, 0, 1)
	assert.Error(t, err)
}
