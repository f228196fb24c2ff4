// Package textgen generates captions and hashtags through a chat-style
// completion backend and normalizes what comes back.
package textgen

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/postgen/internal/errs"
	"github.com/hyperifyio/postgen/internal/prompts"
)

const (
	captionTemperature  = 0.7
	hashtagsTemperature = 0.8
	maxOutputTokens     = 100
)

// Completion is one system + user prompt exchange.
type Completion struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer returns the text of a single completion.
type Completer interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// Generator produces post text with one completion call per operation.
type Generator struct {
	completer Completer
	log       zerolog.Logger
}

// New returns a Generator over c. The logger may be the zero value.
func New(c Completer, log zerolog.Logger) *Generator {
	return &Generator{completer: c, log: log}
}

// GenerateCaption returns the cleaned caption for prompt.
func (g *Generator) GenerateCaption(ctx context.Context, prompt string) (string, error) {
	g.log.Debug().Msg("Generating caption")
	raw, err := g.complete(ctx, "caption", Completion{
		System:      prompts.CaptionSystem,
		User:        prompt,
		Temperature: captionTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	return CleanCaption(raw), nil
}

// GenerateHashtags returns up to 15 normalized hashtags joined by single
// spaces.
func (g *Generator) GenerateHashtags(ctx context.Context, prompt string) (string, error) {
	g.log.Debug().Msg("Generating hashtags")
	raw, err := g.complete(ctx, "hashtags", Completion{
		System:      prompts.HashtagsSystem,
		User:        prompt,
		Temperature: hashtagsTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.Join(NormalizeHashtags(raw), " "), nil
}

func (g *Generator) complete(ctx context.Context, op string, c Completion) (string, error) {
	if g == nil || g.completer == nil {
		return "", errors.New("textgen: no completer configured")
	}
	out, err := g.completer.Complete(ctx, c)
	if err != nil {
		if errs.IsUpstream(err) {
			return "", err
		}
		return "", errs.Upstream("completion", op, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errs.Upstream("completion", op, errors.New("empty completion"))
	}
	return out, nil
}
