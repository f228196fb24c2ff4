package compose

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FaceLoader returns a face at the given pixel size, or nil when none of its
// sources can be loaded.
type FaceLoader func(size int) font.Face

// FileFaces tries each font file in order and returns the first that parses.
// TrueType collections use their first font.
func FileFaces(paths []string) FaceLoader {
	return func(size int) font.Face {
		for _, p := range paths {
			if face, err := loadFace(p, size); err == nil {
				return face
			}
		}
		return nil
	}
}

// resolveFace never returns nil; a missing font falls back to basicfont.
func resolveFace(load FaceLoader, size int) (font.Face, bool) {
	if load != nil {
		if face := load(size); face != nil {
			return face, true
		}
	}
	return basicfont.Face7x13, false
}

func loadFace(path string, size int) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f *sfnt.Font
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		if f, err = coll.Font(0); err != nil {
			return nil, err
		}
	} else if f, err = opentype.Parse(data); err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
