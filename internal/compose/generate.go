// Package compose renders the post image: it asks the image model for a
// picture, fits it to the portrait feed size and overlays the caption.
package compose

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/postgen/internal/config"
	"github.com/hyperifyio/postgen/internal/errs"
	"github.com/hyperifyio/postgen/internal/oai"
)

// ImageAPI is the subset of the OpenAI client used here.
type ImageAPI interface {
	CreateImage(ctx context.Context, req oai.ImageRequest) (oai.ImagesResponse, error)
}

// Generator produces captioned PNG images.
type Generator struct {
	API     ImageAPI
	Model   string
	Size    string
	Quality string
	Width   int
	Height  int
	Fonts   FaceLoader
	// Download fetches the generated image URL.
	Download *http.Client
	Log      zerolog.Logger
}

// NewGenerator returns a Generator with the fixed feed dimensions and a
// download client bounded by config.DownloadTimeout.
func NewGenerator(api ImageAPI, model string, fonts FaceLoader, log zerolog.Logger) *Generator {
	return &Generator{
		API:      api,
		Model:    model,
		Size:     config.GenerationSize,
		Quality:  "standard",
		Width:    config.ImageWidth,
		Height:   config.ImageHeight,
		Fonts:    fonts,
		Download: &http.Client{Timeout: config.DownloadTimeout},
		Log:      log,
	}
}

// GenerateImage writes a PNG for prompt to outputPath, overlaying caption when
// it is non-empty. The parent directory of outputPath must exist.
func (g *Generator) GenerateImage(ctx context.Context, prompt, outputPath, caption string) (string, error) {
	g.Log.Info().Str("model", g.Model).Str("size", g.Size).Msg("Generating image")
	resp, err := g.API.CreateImage(ctx, oai.ImageRequest{
		Model:          g.Model,
		Prompt:         prompt,
		N:              1,
		Size:           g.Size,
		Quality:        g.Quality,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", errs.Upstream("openai", "image generation", errors.New("no image in response"))
	}

	data, err := g.fetch(ctx, resp.Data[0])
	if err != nil {
		return "", err
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errs.Upstream("image download", "decode", err)
	}

	var out image.Image = imaging.Resize(src, g.Width, g.Height, imaging.Lanczos)
	if caption != "" {
		out = Overlay(out, caption, g.Fonts)
	}
	if err := writePNG(outputPath, out); err != nil {
		return "", err
	}
	g.Log.Debug().Str("path", outputPath).Msg("Image saved")
	return outputPath, nil
}

func (g *Generator) fetch(ctx context.Context, d oai.ImageData) ([]byte, error) {
	if d.URL == "" && d.B64JSON != "" {
		b, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, errs.Upstream("openai", "image generation", fmt.Errorf("decode b64_json: %w", err))
		}
		return b, nil
	}
	if d.URL == "" {
		return nil, errs.Upstream("openai", "image generation", errors.New("image has no url"))
	}
	client := g.Download
	if client == nil {
		client = &http.Client{Timeout: config.DownloadTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.Upstream("image download", "GET", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Upstream("image download", "read body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.UpstreamStatus("image download", "GET", resp.StatusCode, body)
	}
	return body, nil
}

// writePNG does not create parent directories.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
