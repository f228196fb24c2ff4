// Package postlog owns the on-disk artifacts of a run: image filenames and the
// posts.json array log.
package postlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const slugMaxRunes = 30

// Entry is one element of posts.json.
type Entry struct {
	Theme             string  `json:"theme"`
	Caption           string  `json:"caption"`
	Hashtags          string  `json:"hashtags"`
	ImagePath         string  `json:"image_path"`
	Timestamp         string  `json:"timestamp"`
	InstagramUploaded bool    `json:"instagram_uploaded"`
	InstagramMediaID  *string `json:"instagram_media_id"`
}

// NewEntry fills Timestamp from t. mediaID is recorded only when uploaded is
// true, so a failed or skipped publish always logs a null id.
func NewEntry(theme, caption, hashtags, imagePath string, t time.Time, uploaded bool, mediaID string) Entry {
	e := Entry{
		Theme:     theme,
		Caption:   caption,
		Hashtags:  hashtags,
		ImagePath: imagePath,
		Timestamp: t.Format(time.RFC3339),
	}
	if uploaded && mediaID != "" {
		e.InstagramUploaded = true
		e.InstagramMediaID = &mediaID
	}
	return e
}

// Slug keeps letters, digits, spaces, '-' and '_', trims, turns spaces into
// underscores, lowercases and cuts the result to 30 runes.
func Slug(theme string) string {
	var b strings.Builder
	for _, r := range theme {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
	if r := []rune(s); len(r) > slugMaxRunes {
		s = string(r[:slugMaxRunes])
	}
	return s
}

// Filename returns "<slug>_<YYYYmmdd_HHMMSS>.png" for theme at t.
func Filename(theme string, t time.Time) string {
	return fmt.Sprintf("%s_%s.png", Slug(theme), t.Format("20060102_150405"))
}

// Load returns every entry of the log at path. A missing file is an empty log.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read post log: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse post log %s: %w", path, err)
	}
	return entries, nil
}

// Append reads the whole array at path, adds e and rewrites the file.
// Existing elements are kept byte-for-byte as JSON values. There is no
// locking: concurrent writers race and the last rename wins.
func Append(path string, e Entry) error {
	var items []json.RawMessage
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read post log: %w", err)
	case len(bytes.TrimSpace(data)) > 0:
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("parse post log %s: %w", path, err)
		}
	}

	raw, err := marshalNoEscape(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	items = append(items, raw)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode post log: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

func marshalNoEscape(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeFileAtomic writes data to a temporary file next to dstPath, fsyncs it
// and renames it over dstPath. The parent directory is created when missing.
func writeFileAtomic(dstPath string, data []byte) error {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".posts-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
