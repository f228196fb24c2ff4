package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/postgen/internal/compose"
	"github.com/hyperifyio/postgen/internal/config"
	"github.com/hyperifyio/postgen/internal/hook"
	"github.com/hyperifyio/postgen/internal/logging"
	"github.com/hyperifyio/postgen/internal/oai"
	"github.com/hyperifyio/postgen/internal/pipeline"
	"github.com/hyperifyio/postgen/internal/publish"
	"github.com/hyperifyio/postgen/internal/textgen"
	"github.com/hyperifyio/postgen/internal/themesrc"
)

const summaryRule = "=================================================="

// runPost generates one post and returns a process exit code.
func runPost(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Read()
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	opts, err := parseRunFlags(args, cfg)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	opts.apply(cfg)

	if opts.printConfig {
		return printResolvedConfig(cfg, stdout, stderr)
	}
	if err := cfg.Validate(); err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 2
	}
	log := logging.New(stderr, level)
	ctx := context.Background()

	theme := opts.theme
	if theme == "" {
		safeFprintln(stdout, "\n=== Instagram Content Generator ===")
		theme = readTheme(stdin, stdout)
	}
	if strings.TrimSpace(theme) == "" {
		safeFprintf(stderr, "error: %v\n", pipeline.ErrEmptyTheme)
		return 1
	}
	if themesrc.IsURL(theme) {
		resolved, err := themesrc.New().Resolve(ctx, theme)
		if err != nil {
			safeFprintf(stderr, "error: resolve theme: %v\n", err)
			return 1
		}
		log.Info().Str("url", theme).Str("theme", resolved).Msg("Theme resolved from page")
		theme = resolved
	}

	p, cleanup, err := buildPipeline(ctx, cfg, opts, log)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	safeFprintf(stdout, "\nGenerating content for theme: %s\n", theme)
	res, err := p.Run(ctx, theme)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	printSummary(stdout, res)
	return 0
}

// buildPipeline wires the components selected by cfg. cleanup releases
// clients that hold connections.
func buildPipeline(ctx context.Context, cfg *config.Config, opts runOptions, log zerolog.Logger) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	var completer textgen.Completer
	switch cfg.TextProvider {
	case "gemini":
		g, err := textgen.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := g.Close(); err != nil {
				log.Debug().Err(err).Msg("Failed to close Gemini client")
			}
		}
		completer = g
	default:
		completer = &textgen.OpenAICompleter{
			Client: oai.NewClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout),
			Model:  cfg.CaptionModel,
		}
	}

	images := compose.NewGenerator(
		oai.NewClient(cfg.ImageBaseURL, cfg.APIKey, cfg.HTTPTimeout),
		cfg.ImageModel,
		compose.FileFaces(cfg.FontPaths),
		log,
	)

	p := pipeline.New(textgen.New(completer, log), images, cfg.ImagesDir(), cfg.PostsPath(), log)
	p.Proof = opts.proof

	if cfg.HookPath != "" {
		s, err := hook.Load(cfg.HookPath, log)
		if err != nil {
			return nil, cleanup, err
		}
		p.Hook = s
	}

	switch {
	case opts.noPublish:
		log.Debug().Msg("Publishing disabled by -no-publish")
	case cfg.PublishingEnabled():
		p.Publisher = newPublisher(cfg, log)
	}
	return p, cleanup, nil
}

func newPublisher(cfg *config.Config, log zerolog.Logger) *publish.Publisher {
	var hosts []publish.ImageHost
	if cfg.GitHub.Enabled() {
		gh, err := publish.NewGitHubHost(cfg.GitHub, &http.Client{Timeout: cfg.HTTPTimeout})
		if err != nil {
			log.Warn().Err(err).Msg("GitHub image host disabled")
		} else {
			hosts = append(hosts, gh)
		}
	}
	if cfg.MinIO.Enabled() {
		mh, err := publish.NewMinIOHost(cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("MinIO image host disabled")
		} else {
			hosts = append(hosts, mh)
		}
	}
	graph := publish.NewGraphClient(cfg.Instagram.GraphBaseURL, cfg.HTTPTimeout)
	return publish.New(cfg.Instagram, graph, hosts, log)
}

// readTheme prompts on w and reads one line from r.
func readTheme(r io.Reader, w io.Writer) string {
	safeFprintf(w, "Enter a theme (e.g., 'life motivation', 'sunset travel'): ")
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

func printSummary(w io.Writer, res *pipeline.Result) {
	c := res.Content
	safeFprintln(w, "\n"+summaryRule)
	safeFprintln(w, "[SUCCESS] Content generated successfully!")
	safeFprintf(w, "Theme: %s\n", c.Theme)
	safeFprintf(w, "Caption: %s\n", c.Caption)
	safeFprintf(w, "Hashtags: %s\n", c.HashtagString())
	safeFprintf(w, "Image saved to: %s\n", c.ImagePath)
	if res.ProofPath != "" {
		safeFprintf(w, "Proof sheet: %s\n", res.ProofPath)
	}
	switch {
	case res.Publish == nil:
		safeFprintln(w, "[INFO] Instagram upload skipped")
	case res.Publish.Success:
		safeFprintf(w, "Instagram: Uploaded successfully (Media ID: %s)\n", res.Publish.MediaID)
	default:
		safeFprintf(w, "[WARNING] Instagram upload failed at %s: %s\n", res.Publish.Step, res.Publish.Message)
	}
	safeFprintf(w, "Post logged to: %s\n", res.LogPath)
	safeFprintln(w, summaryRule)
}

func printResolvedConfig(cfg *config.Config, stdout, stderr io.Writer) int {
	b, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
	if err != nil {
		safeFprintf(stderr, "error: marshal config: %v\n", err)
		return 1
	}
	safeFprintln(stdout, string(b))
	return 0
}
