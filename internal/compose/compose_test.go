package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/hyperifyio/postgen/internal/errs"
	"github.com/hyperifyio/postgen/internal/oai"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func TestFontSize_Clamped(t *testing.T) {
	assert.Equal(t, 46, FontSize(1024))
	assert.Equal(t, 24, FontSize(100))
	assert.Equal(t, 60, FontSize(4000))
}

func TestCharsPerLine(t *testing.T) {
	assert.Equal(t, 81, CharsPerLine(1024))
	assert.Equal(t, 20, CharsPerLine(100))
}

func TestWrap_BreaksOnlyOnWhitespace(t *testing.T) {
	lines := Wrap("one two three four five", 9)
	assert.Equal(t, []string{"one two", "three", "four five"}, lines)

	lines = Wrap("short extraordinarilylongword end", 10)
	assert.Equal(t, []string{"short", "extraordinarilylongword", "end"}, lines)

	assert.Empty(t, Wrap(" \t\n ", 20))
}

func TestMeasure_ApproximatesWithoutFace(t *testing.T) {
	w, h := Measure(nil, "abcd", 40)
	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)

	w, h = Measure(basicfont.Face7x13, "abcd", 40)
	assert.Greater(t, w, 20)
	assert.LessOrEqual(t, w, 28)
	assert.Equal(t, 13, h)
}

func TestComputeLayout_Properties(t *testing.T) {
	const W, H = 1024, 1280
	caption := strings.Repeat("quiet steady growth ", 12)
	for _, face := range []font.Face{nil, basicfont.Face7x13} {
		l := ComputeLayout(W, H, caption, face)
		require.GreaterOrEqual(t, len(l.Lines), 2)

		sum := 0
		for _, ln := range l.Lines {
			sum += ln.Height
			center2 := 2*ln.X + ln.Width
			assert.InDelta(t, W, center2, 2, "line %q not centred", ln.Text)
			assert.LessOrEqual(t, len([]rune(ln.Text)), CharsPerLine(W))
		}
		assert.GreaterOrEqual(t, l.Box.Dy(), sum)
		assert.LessOrEqual(t, l.Box.Max.Y, H)
		assert.GreaterOrEqual(t, l.Box.Min.X, 0)
		assert.LessOrEqual(t, l.Box.Max.X, W)
		assert.Equal(t, 793, l.Top) // int(0.62 * 1280)
		assert.Equal(t, l.Top, l.Lines[0].Y)
	}
}

func TestComputeLayout_BlockHeightAndAdvance(t *testing.T) {
	// Two lines with the nil-face approximation: each line is size tall.
	l := ComputeLayout(1024, 1280, strings.Repeat("a ", 50), nil)
	require.Len(t, l.Lines, 2)
	size := l.FontSize
	assert.Equal(t, 2*size+int(0.3*float64(size)), l.BlockHeight)
	assert.Equal(t, l.Lines[0].Y+size+int(0.25*float64(size)), l.Lines[1].Y)
	pad := int(0.6 * float64(size))
	assert.Equal(t, l.Top-pad, l.Box.Min.Y)
	assert.Equal(t, l.Top+l.BlockHeight+pad, l.Box.Max.Y)
}

func TestComputeLayout_ClampsBoxToImage(t *testing.T) {
	l := ComputeLayout(200, 100, strings.Repeat("word ", 80), nil)
	assert.Equal(t, image.Rect(0, 0, 200, 100), l.Box.Union(image.Rect(0, 0, 200, 100)))
	assert.LessOrEqual(t, l.Box.Max.Y, 100)
}

func TestOverlay_EmptyCaptionIsPixelIdentical(t *testing.T) {
	src := gradient(64, 80)
	for _, caption := range []string{"", "   \n\t"} {
		out := Overlay(src, caption, nil)
		require.Equal(t, src.Bounds(), out.Bounds())
		for y := 0; y < 80; y++ {
			for x := 0; x < 64; x++ {
				r1, g1, b1, a1 := src.At(x, y).RGBA()
				r2, g2, b2, a2 := out.At(x, y).RGBA()
				if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
					t.Fatalf("pixel %d,%d changed for caption %q", x, y, caption)
				}
			}
		}
	}
}

func TestOverlay_DarkensBoxAndDrawsWhiteText(t *testing.T) {
	src := solid(400, 500, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	out := Overlay(src, "calm is a skill", FaceLoader(func(int) font.Face { return basicfont.Face7x13 }))

	l := ComputeLayout(400, 500, "calm is a skill", basicfont.Face7x13)
	corner := out.RGBAAt(l.Box.Min.X+1, l.Box.Min.Y+1)
	assert.Less(t, int(corner.R), 200)
	assert.Equal(t, uint8(255), corner.A)

	outside := out.RGBAAt(2, 2)
	assert.Equal(t, color.RGBA{R: 200, G: 200, B: 200, A: 255}, outside)

	white := 0
	for _, ln := range l.Lines {
		for y := ln.Y; y < ln.Y+ln.Height; y++ {
			for x := ln.X; x < ln.X+ln.Width; x++ {
				if c := out.RGBAAt(x, y); c.R == 255 && c.G == 255 && c.B == 255 {
					white++
				}
			}
		}
	}
	assert.Greater(t, white, 0, "expected white glyph pixels")
}

func TestOverlay_MissingFontFallsBack(t *testing.T) {
	loader := FileFaces([]string{filepath.Join(t.TempDir(), "missing.ttf")})
	assert.Nil(t, loader(40))
	out := Overlay(solid(300, 300, color.White), "still works", loader)
	assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
}

func TestFileFaces_SkipsGarbage(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o644))
	assert.Nil(t, FileFaces([]string{bad})(30))
}

type imageServer struct {
	srv        *httptest.Server
	imageCalls int32
	status     int
	lastReq    oai.ImageRequest
}

func newImageServer(t *testing.T, status int) *imageServer {
	t.Helper()
	s := &imageServer{status: status}
	var pngBytes bytes.Buffer
	require.NoError(t, png.Encode(&pngBytes, gradient(100, 175)))
	mux := http.NewServeMux()
	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&s.lastReq)
		_ = json.NewEncoder(w).Encode(oai.ImagesResponse{Data: []oai.ImageData{{URL: s.srv.URL + "/files/img.png"}}})
	})
	mux.HandleFunc("/files/img.png", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.imageCalls, 1)
		if s.status != http.StatusOK {
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte("gone"))
			return
		}
		_, _ = w.Write(pngBytes.Bytes())
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func TestGenerateImage_EndToEnd(t *testing.T) {
	s := newImageServer(t, http.StatusOK)
	g := NewGenerator(oai.NewClient(s.srv.URL, "k", time.Second), "dall-e-3", nil, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "post.png")
	got, err := g.GenerateImage(context.Background(), "a calm lake", out, "Still water runs deep")
	require.NoError(t, err)
	assert.Equal(t, out, got)
	assert.Equal(t, "1024x1792", s.lastReq.Size)
	assert.Equal(t, "standard", s.lastReq.Quality)
	assert.Equal(t, "dall-e-3", s.lastReq.Model)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1024, 1280), img.Bounds())
	_, _, _, a := img.At(512, 1000).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestGenerateImage_DownloadFailureIsUpstream(t *testing.T) {
	s := newImageServer(t, http.StatusNotFound)
	g := NewGenerator(oai.NewClient(s.srv.URL, "k", time.Second), "dall-e-3", nil, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "post.png")
	_, err := g.GenerateImage(context.Background(), "p", out, "")
	require.Error(t, err)
	assert.True(t, errs.IsUpstream(err))
	assert.Contains(t, err.Error(), "404")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateImage_DoesNotCreateParentDirs(t *testing.T) {
	s := newImageServer(t, http.StatusOK)
	g := NewGenerator(oai.NewClient(s.srv.URL, "k", time.Second), "dall-e-3", nil, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "missing", "post.png")
	_, err := g.GenerateImage(context.Background(), "p", out, "")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&s.imageCalls))
}
