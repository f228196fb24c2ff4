// Package pipeline sequences one post: caption, hashtags, image, optional
// publish and the log entry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/postgen/internal/hook"
	"github.com/hyperifyio/postgen/internal/postlog"
	"github.com/hyperifyio/postgen/internal/prompts"
	"github.com/hyperifyio/postgen/internal/proof"
	"github.com/hyperifyio/postgen/internal/publish"
	"github.com/hyperifyio/postgen/internal/textgen"
)

// ErrEmptyTheme is returned for an empty or whitespace-only theme.
var ErrEmptyTheme = errors.New("theme must not be empty")

// TextGenerator writes captions and hashtags.
type TextGenerator interface {
	GenerateCaption(ctx context.Context, prompt string) (string, error)
	GenerateHashtags(ctx context.Context, prompt string) (string, error)
}

// ImageMaker writes the post image to outputPath.
type ImageMaker interface {
	GenerateImage(ctx context.Context, prompt, outputPath, caption string) (string, error)
}

// Publisher posts a finished image. Implementations report failure in the
// Result instead of returning an error.
type Publisher interface {
	Publish(ctx context.Context, imagePath, caption, hashtags string) publish.Result
}

// Content is the generated post.
type Content struct {
	Theme     string
	Caption   string
	Hashtags  []string
	ImagePath string
}

// HashtagString returns the hashtags joined by single spaces.
func (c Content) HashtagString() string { return strings.Join(c.Hashtags, " ") }

// Result describes a finished run. Publish is nil when publishing was skipped.
type Result struct {
	Content   Content
	Publish   *publish.Result
	Entry     postlog.Entry
	LogPath   string
	ProofPath string
}

// Uploaded reports whether the post reached Instagram.
func (r *Result) Uploaded() bool { return r.Publish != nil && r.Publish.Success }

// Pipeline holds the components for a run. Publisher, Hook and Proof are
// optional.
type Pipeline struct {
	Text      TextGenerator
	Images    ImageMaker
	Publisher Publisher
	Hook      *hook.Script
	Proof     bool
	ImagesDir string
	PostsPath string
	Now       func() time.Time
	Log       zerolog.Logger
}

// New returns a Pipeline writing images to imagesDir and entries to
// postsPath.
func New(text TextGenerator, images ImageMaker, imagesDir, postsPath string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Text:      text,
		Images:    images,
		ImagesDir: imagesDir,
		PostsPath: postsPath,
		Now:       time.Now,
		Log:       log,
	}
}

// Run generates, optionally publishes, and logs one post for theme.
// Generation failures abort with no log entry; publish failures do not.
func (p *Pipeline) Run(ctx context.Context, theme string) (*Result, error) {
	if err := os.MkdirAll(p.ImagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	if strings.TrimSpace(theme) == "" {
		return nil, ErrEmptyTheme
	}
	log := p.Log.With().Str("theme", theme).Logger()

	log.Info().Msg("Generating caption")
	caption, err := p.Text.GenerateCaption(ctx, prompts.Caption(theme))
	if err != nil {
		return nil, fmt.Errorf("generate caption: %w", err)
	}
	if caption, err = p.hookCaption(caption, theme); err != nil {
		return nil, err
	}

	log.Info().Msg("Generating hashtags")
	raw, err := p.Text.GenerateHashtags(ctx, prompts.Hashtags(theme, caption))
	if err != nil {
		return nil, fmt.Errorf("generate hashtags: %w", err)
	}
	tags, err := p.hookHashtags(strings.Fields(raw), theme)
	if err != nil {
		return nil, err
	}

	imagePath := filepath.Join(p.ImagesDir, postlog.Filename(theme, p.now()))
	log.Info().Str("path", imagePath).Msg("Generating image")
	imagePath, err = p.Images.GenerateImage(ctx, prompts.Image(theme), imagePath, caption)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	res := &Result{
		Content: Content{Theme: theme, Caption: caption, Hashtags: tags, ImagePath: imagePath},
		LogPath: p.PostsPath,
	}

	if p.Proof {
		pdfPath := proof.PathFor(imagePath)
		if err := proof.Write(pdfPath, theme, caption, tags, imagePath); err != nil {
			log.Warn().Err(err).Msg("Failed to write proof sheet")
		} else {
			res.ProofPath = pdfPath
		}
	}

	if p.Publisher != nil {
		log.Info().Msg("Uploading to Instagram")
		pr := p.Publisher.Publish(ctx, imagePath, caption, res.Content.HashtagString())
		res.Publish = &pr
		if pr.Success {
			log.Info().Str("media_id", pr.MediaID).Msg(pr.Message)
		} else {
			log.Warn().Str("step", string(pr.Step)).Str("error", pr.Error).Msg("Publishing failed")
		}
	} else {
		log.Info().Msg("Publishing skipped: Instagram credentials not configured")
	}

	var mediaID string
	if res.Publish != nil {
		mediaID = res.Publish.MediaID
	}
	res.Entry = postlog.NewEntry(theme, caption, res.Content.HashtagString(), imagePath, p.now(), res.Uploaded(), mediaID)
	if err := postlog.Append(p.PostsPath, res.Entry); err != nil {
		return nil, fmt.Errorf("log post: %w", err)
	}
	log.Debug().Str("path", p.PostsPath).Msg("Post logged")
	return res, nil
}

func (p *Pipeline) hookCaption(caption, theme string) (string, error) {
	if !p.Hook.HasCaption() {
		return caption, nil
	}
	out, err := p.Hook.TransformCaption(caption, theme)
	if err != nil {
		return "", fmt.Errorf("caption hook: %w", err)
	}
	return textgen.CleanCaption(out), nil
}

func (p *Pipeline) hookHashtags(tags []string, theme string) ([]string, error) {
	if p.Hook.HasHashtags() {
		out, err := p.Hook.TransformHashtags(tags, theme)
		if err != nil {
			return nil, fmt.Errorf("hashtags hook: %w", err)
		}
		tags = out
	}
	return textgen.NormalizeHashtags(strings.Join(tags, " ")), nil
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
