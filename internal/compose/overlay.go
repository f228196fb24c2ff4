package compose

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// BoxAlpha is the opacity of the black box drawn behind the caption.
const BoxAlpha = 140

// Overlay draws caption centred in the lower third of img over a
// semi-transparent box and returns an opaque copy. An empty caption returns
// img converted to RGBA, untouched.
func Overlay(img image.Image, caption string, load FaceLoader) *image.RGBA {
	dst := toRGBA(img)
	b := dst.Bounds()
	face, _ := resolveFace(load, FontSize(b.Dx()))
	l := ComputeLayout(b.Dx(), b.Dy(), caption, face)
	if l.Empty() {
		return dst
	}
	drawLayout(dst, l, face)
	return flatten(dst)
}

func drawLayout(dst *image.RGBA, l Layout, face font.Face) {
	origin := dst.Bounds().Min
	box := l.Box.Add(origin)
	draw.Draw(dst, box, image.NewUniform(color.NRGBA{A: BoxAlpha}), image.Point{}, draw.Over)

	d := &font.Drawer{Dst: dst, Src: image.White, Face: face}
	for _, ln := range l.Lines {
		ink, _ := font.BoundString(face, ln.Text)
		// Shift the dot so the ink box starts at the line's top left corner.
		d.Dot = fixed.Point26_6{
			X: fixed.I(origin.X+ln.X) - ink.Min.X,
			Y: fixed.I(origin.Y+ln.Y) - ink.Min.Y,
		}
		d.DrawString(ln.Text)
	}
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// flatten composites img over opaque black.
func flatten(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.Black, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}
