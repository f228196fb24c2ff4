package postlog

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Posts"

var exportHeaders = []string{
	"Timestamp", "Theme", "Caption", "Hashtags", "Image Path", "Instagram Uploaded", "Instagram Media ID",
}

// ExportXLSX writes entries to a spreadsheet at path, one row per entry.
func ExportXLSX(entries []Entry, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, h := range exportHeaders {
		if err := setCell(f, col+1, 1, h); err != nil {
			return err
		}
	}
	for i, e := range entries {
		row := i + 2
		mediaID := ""
		if e.InstagramMediaID != nil {
			mediaID = *e.InstagramMediaID
		}
		values := []any{e.Timestamp, e.Theme, e.Caption, e.Hashtags, e.ImagePath, e.InstagramUploaded, mediaID}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(exportSheet, cell, v)
}
