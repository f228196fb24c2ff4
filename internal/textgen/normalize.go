package textgen

import (
	"strings"
)

// MaxHashtags caps the number of hashtags kept from one completion.
const MaxHashtags = 15

var captionReplacer = strings.NewReplacer(
	`"`, "",
	"'", "",
	"“", "",
	"”", "",
	"‘", "",
	"’", "",
	"!", ".",
	"?", ".",
)

// CleanCaption removes straight and curly quotes, turns '!' and '?' into '.'
// and trims surrounding whitespace.
func CleanCaption(s string) string {
	return strings.TrimSpace(captionReplacer.Replace(strings.TrimSpace(s)))
}

// NormalizeHashtags turns whitespace-separated tokens into tags matching
// ^#[A-Za-z0-9_]+$. Tokens with nothing left after stripping and repeated
// tags are dropped; at most MaxHashtags are returned, in input order.
func NormalizeHashtags(raw string) []string {
	out := make([]string, 0, MaxHashtags)
	seen := make(map[string]struct{}, MaxHashtags)
	for _, tok := range strings.Fields(raw) {
		if len(out) == MaxHashtags {
			break
		}
		body := strings.TrimPrefix(tok, "#")
		var b strings.Builder
		b.WriteByte('#')
		for i := 0; i < len(body); i++ {
			if isTagByte(body[i]) {
				b.WriteByte(body[i])
			}
		}
		tag := b.String()
		if len(tag) == 1 {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func isTagByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
