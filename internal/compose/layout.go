package compose

import (
	"image"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// Line is one wrapped caption line placed on the image. X and Y are the top
// left corner of the line's ink box.
type Line struct {
	Text   string
	Width  int
	Height int
	X      int
	Y      int
}

// Layout is the computed placement of a caption over a W×H image.
type Layout struct {
	FontSize    int
	Lines       []Line
	BlockWidth  int
	BlockHeight int
	Left        int
	Top         int
	Box         image.Rectangle
}

// Empty reports whether there is nothing to draw.
func (l Layout) Empty() bool { return len(l.Lines) == 0 }

// FontSize is 4.5% of the image width clamped to [24, 60].
func FontSize(width int) int {
	return clamp(int(0.045*float64(width)), 24, 60)
}

// CharsPerLine is 8% of the image width, at least 20.
func CharsPerLine(width int) int {
	return max(20, int(0.08*float64(width)))
}

// Wrap breaks s on whitespace into lines of at most width runes. A word
// longer than width is kept whole on its own line.
func Wrap(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(s) {
		n := utf8.RuneCountInString(w)
		switch {
		case curLen == 0:
			cur.WriteString(w)
			curLen = n
		case curLen+1+n <= width:
			cur.WriteByte(' ')
			cur.WriteString(w)
			curLen += 1 + n
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(w)
			curLen = n
		}
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Measure returns the ink width and height of s in face. With a nil face, or
// when the face reports an empty box, it approximates len(s)·size/2 by size.
func Measure(face font.Face, s string, size int) (w, h int) {
	if face != nil {
		b, _ := font.BoundString(face, s)
		w, h = (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return utf8.RuneCountInString(s) * size / 2, size
}

// ComputeLayout places caption over a width×height image using face for
// measurement. face may be nil.
func ComputeLayout(width, height int, caption string, face font.Face) Layout {
	size := FontSize(width)
	l := Layout{FontSize: size}
	texts := Wrap(caption, CharsPerLine(width))
	if len(texts) == 0 {
		return l
	}

	gap := int(0.3 * float64(size))
	advanceGap := int(0.25 * float64(size))
	pad := int(0.6 * float64(size))

	l.Lines = make([]Line, len(texts))
	for i, t := range texts {
		w, h := Measure(face, t, size)
		l.Lines[i] = Line{Text: t, Width: w, Height: h}
		l.BlockWidth = max(l.BlockWidth, w)
		l.BlockHeight += h
	}
	l.BlockHeight += (len(texts) - 1) * gap

	l.Left = (width - l.BlockWidth) / 2
	l.Top = int(0.62 * float64(height))
	l.Box = image.Rect(
		l.Left-pad, l.Top-pad,
		l.Left+l.BlockWidth+pad, l.Top+l.BlockHeight+pad,
	).Intersect(image.Rect(0, 0, width, height))

	y := l.Top
	for i := range l.Lines {
		ln := &l.Lines[i]
		ln.X = (width - ln.Width) / 2
		ln.Y = y
		y += ln.Height + advanceGap
	}
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
