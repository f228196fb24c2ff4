// Package proof renders a one-page PDF contact sheet for a generated post so
// it can be reviewed before or after publishing.
package proof

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	margin      = 15.0
	titleSize   = 18.0
	bodySize    = 11.0
	lineHeight  = 6.0
	maxImageMM  = 170.0
	imageFormat = "PNG"
)

// Write renders theme, caption, hashtags and the image at imagePath into a PDF
// at path, replacing any existing file.
func Write(path, theme, caption string, hashtags []string, imagePath string) error {
	w, h, err := imageSize(imagePath)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(theme, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.MultiCell(0, 9, tr(theme), "", "L", false)
	pdf.Ln(3)

	pageW, _ := pdf.GetPageSize()
	dispH := maxImageMM
	dispW := dispH * float64(w) / float64(h)
	if limit := pageW - 2*margin; dispW > limit {
		dispW = limit
		dispH = dispW * float64(h) / float64(w)
	}
	opts := gofpdf.ImageOptions{ImageType: imageFormat, ReadDpi: false}
	pdf.ImageOptions(imagePath, (pageW-dispW)/2, pdf.GetY(), dispW, dispH, true, opts, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", bodySize)
	pdf.MultiCell(0, lineHeight, tr(caption), "", "L", false)
	if len(hashtags) > 0 {
		pdf.Ln(2)
		pdf.SetTextColor(60, 90, 160)
		pdf.MultiCell(0, lineHeight, tr(strings.Join(hashtags, " ")), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write proof %s: %w", path, err)
	}
	return nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, fmt.Errorf("image %s has zero size", path)
	}
	return cfg.Width, cfg.Height, nil
}

// PathFor returns the proof path that sits next to an image.
func PathFor(imagePath string) string {
	if i := strings.LastIndex(imagePath, "."); i > strings.LastIndexAny(imagePath, `/\`) {
		return imagePath[:i] + ".pdf"
	}
	return imagePath + ".pdf"
}
