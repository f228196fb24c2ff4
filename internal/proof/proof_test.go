package proof

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestWrite_ReadBack(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "sunset_20250101_120000.png")
	writeTestPNG(t, imgPath, 64, 80)
	out := PathFor(imgPath)
	assert.Equal(t, filepath.Join(dir, "sunset_20250101_120000.pdf"), out)

	err := Write(out, "Sunset Travel", "Golden light over quiet water.", []string{"#sunset", "#travel"}, imgPath)
	require.NoError(t, err)

	f, r, err := pdf.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, 1, r.NumPage())

	rd, err := r.GetPlainText()
	require.NoError(t, err)
	raw, err := io.ReadAll(rd)
	require.NoError(t, err)
	text := strings.Join(strings.Fields(string(raw)), "")
	assert.Contains(t, text, "SunsetTravel")
	assert.Contains(t, text, "#sunset")
}

func TestWrite_MissingImage(t *testing.T) {
	dir := t.TempDir()
	err := Write(filepath.Join(dir, "x.pdf"), "t", "c", nil, filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "x.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "a/b.pdf", PathFor("a/b.png"))
	assert.Equal(t, "a.b/c.pdf", PathFor("a.b/c"))
}
