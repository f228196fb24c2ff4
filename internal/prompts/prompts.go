// Package prompts renders the natural-language prompts sent to the text and
// image models. All functions are pure.
package prompts

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed assets/*.tmpl
var assets embed.FS

var templates = template.Must(template.New("prompts").Option("missingkey=error").ParseFS(assets, "assets/*.tmpl"))

// System instructions paired with the caption and hashtag prompts.
const (
	CaptionSystem  = "You are a thoughtful content writer who creates calm, confident, grounded captions with emotional maturity. You avoid hype, hustle culture, and excessive punctuation."
	HashtagsSystem = "You are a social media expert who generates relevant, effective Instagram hashtags. Return only hashtags separated by spaces, no additional text."
)

type data struct {
	Theme   string
	Caption string
}

// Image returns the image-generation prompt for theme.
func Image(theme string) string { return render("image.tmpl", data{Theme: theme}) }

// Caption returns the caption prompt for theme.
func Caption(theme string) string { return render("caption.tmpl", data{Theme: theme}) }

// Hashtags returns the hashtag prompt for theme and its generated caption.
func Hashtags(theme, caption string) string {
	return render("hashtags.tmpl", data{Theme: theme, Caption: caption})
}

// render cannot fail for the embedded templates and a data value; a failure
// is a programming error.
func render(name string, d data) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, d); err != nil {
		panic(err)
	}
	return strings.TrimRight(b.String(), "\n")
}
