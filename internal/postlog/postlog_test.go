package postlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFilename_SunsetTravel(t *testing.T) {
	ts := time.Date(2024, 6, 1, 18, 30, 5, 0, time.UTC)
	got := Filename("Sunset! Travel #2024", ts)
	assert.Equal(t, "sunset_travel_2024_20240601_183005.png", got)
	assert.Regexp(t, regexp.MustCompile(`^sunset_travel_2024_\d{8}_\d{6}\.png$`), got)
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"  Morning Calm  ":                       "morning_calm",
		"a/b\\c:d":                               "abcd",
		"Self-care_Sunday":                       "self-care_sunday",
		"Café Räume":                             "café_räume",
		"":                                       "",
		"This theme is definitely longer than 30": "this_theme_is_definitely_longe",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), in)
	}
	assert.LessOrEqual(t, len([]rune(Slug(strings.Repeat("ä", 100)))), 30)
}

func TestNewEntry_NullMediaIDUnlessUploaded(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEntry("t", "c", "#a", "img.png", ts, false, "ignored")
	assert.False(t, e.InstagramUploaded)
	assert.Nil(t, e.InstagramMediaID)
	assert.Equal(t, "2024-01-02T03:04:05Z", e.Timestamp)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"instagram_media_id":null`)

	e = NewEntry("t", "c", "#a", "img.png", ts, true, "1789")
	require.NotNil(t, e.InstagramMediaID)
	assert.True(t, e.InstagramUploaded)
	assert.Equal(t, "1789", *e.InstagramMediaID)
}

func TestAppend_SequentialEntriesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "posts.json")
	const n = 5
	for i := 0; i < n; i++ {
		e := NewEntry(fmt.Sprintf("theme %d", i), "caption", "#tag", "img.png", time.Now(), false, "")
		require.NoError(t, Append(path, e))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, n)
	for i, obj := range raw {
		assert.Equal(t, fmt.Sprintf("theme %d", i), obj["theme"])
	}
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"theme\""), "expected two-space indentation, got %q", string(data)[:20])

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestAppend_PreservesNonASCIIAndForeignFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"theme":"old","extra":1}]`), 0o644))

	require.NoError(t, Append(path, NewEntry("Café <calm>", "ünïcode", "", "x.png", time.Now(), false, "")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"extra": 1`)
	assert.Contains(t, s, "Café <calm>")
	assert.Contains(t, s, "ünïcode")
}

func TestAppend_RejectsCorruptLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not an array"), 0o644))
	err := Append(path, NewEntry("t", "c", "", "x", time.Now(), false, ""))
	require.Error(t, err)

	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, "{not an array", string(data))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportXLSX_OneRowPerEntry(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		NewEntry("first", "cap one", "#a #b", "a.png", ts, true, "111"),
		NewEntry("second", "cap two", "#c", "b.png", ts, false, ""),
	}
	out := filepath.Join(dir, "posts.xlsx")
	require.NoError(t, ExportXLSX(entries, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Posts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Theme", rows[0][1])
	assert.Equal(t, "first", rows[1][1])
	assert.Equal(t, "111", rows[1][6])
	assert.Equal(t, "second", rows[2][1])
}
