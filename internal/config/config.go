// Package config builds the process configuration once at startup from the
// environment (and an optional .env file). The resulting *Config is passed
// explicitly into every component.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hyperifyio/postgen/internal/errs"
)

const (
	// ImageWidth and ImageHeight are the dimensions of every saved image.
	ImageWidth  = 1024
	ImageHeight = 1280
	// GenerationSize is the nearest portrait size the Images API offers.
	GenerationSize = "1024x1792"
	// DownloadTimeout bounds the fetch of the generated image.
	DownloadTimeout = 30 * time.Second
)

// Instagram holds Graph API credentials. All fields are optional; an empty
// AccessToken disables publishing.
type Instagram struct {
	AccessToken       string
	PageID            string
	BusinessAccountID string
	GraphBaseURL      string
}

// GitHub configures the repository used as a public image host.
type GitHub struct {
	Token      string
	Owner      string
	Repo       string
	APIBaseURL string
	RawBaseURL string
}

// Enabled reports whether enough is configured to attempt an upload.
func (g GitHub) Enabled() bool {
	return strings.TrimSpace(g.Token) != "" && strings.TrimSpace(g.Owner) != ""
}

// MinIO configures an S3-compatible bucket used as a public image host.
type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether enough is configured to attempt an upload.
func (m MinIO) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != "" && strings.TrimSpace(m.Bucket) != ""
}

// Config is the resolved configuration for one process.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	CaptionModel string
	ImageModel   string
	HTTPTimeout  time.Duration

	TextProvider string
	GeminiAPIKey string
	GeminiModel  string

	Instagram Instagram
	GitHub    GitHub
	MinIO     MinIO

	OutputDir string
	FontPaths []string
	HookPath  string
	LogLevel  string
}

// ImagesDir is where generated PNGs are written.
func (c *Config) ImagesDir() string { return filepath.Join(c.OutputDir, "images") }

// PostsPath is the JSON array log.
func (c *Config) PostsPath() string { return filepath.Join(c.OutputDir, "posts.json") }

// PublishingEnabled reports whether a Graph access token is configured.
func (c *Config) PublishingEnabled() bool {
	return strings.TrimSpace(c.Instagram.AccessToken) != ""
}

// Read loads .env when present and resolves the configuration from the
// environment without validating it. Callers that talk to an API call
// Validate once flags have been applied.
func Read() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, &errs.ConfigError{Key: ".env", Msg: err.Error()}
		}
	}
	return resolve(), nil
}

// FromEnv resolves and validates the configuration from the current
// environment only.
func FromEnv() (*Config, error) {
	cfg := resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve() *Config {
	baseURL := getEnv("OAI_BASE_URL", "https://api.openai.com/v1")
	cfg := &Config{
		APIKey:       resolveAPIKeyFromEnv(),
		BaseURL:      baseURL,
		ImageBaseURL: getEnv("OAI_IMAGE_BASE_URL", baseURL),
		CaptionModel: getEnv("OAI_MODEL", "gpt-4o-mini"),
		ImageModel:   getEnv("OAI_IMAGE_MODEL", "dall-e-3"),
		HTTPTimeout:  getEnvDuration("OAI_HTTP_TIMEOUT", 0),

		TextProvider: strings.ToLower(getEnv("TEXT_PROVIDER", "openai")),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		Instagram: Instagram{
			AccessToken:       os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
			PageID:            os.Getenv("FACEBOOK_PAGE_ID"),
			BusinessAccountID: os.Getenv("INSTAGRAM_BUSINESS_ACCOUNT_ID"),
			GraphBaseURL:      getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v18.0"),
		},
		GitHub: GitHub{
			Token:      os.Getenv("GITHUB_TOKEN"),
			Owner:      os.Getenv("GITHUB_USERNAME"),
			Repo:       getEnv("GITHUB_REPO", "instagram-images"),
			APIBaseURL: os.Getenv("GITHUB_API_URL"),
			RawBaseURL: getEnv("GITHUB_RAW_BASE_URL", "https://raw.githubusercontent.com"),
		},
		MinIO: MinIO{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", true),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},

		OutputDir: getEnv("POSTGEN_OUTPUT_DIR", "outputs"),
		FontPaths: fontPathsFromEnv(),
		HookPath:  os.Getenv("POSTGEN_HOOK"),
		LogLevel:  getEnv("POSTGEN_LOG_LEVEL", "info"),
	}
	if cfg.MinIO.PublicURL == "" && cfg.MinIO.Endpoint != "" {
		scheme := "https://"
		if !cfg.MinIO.UseSSL {
			scheme = "http://"
		}
		cfg.MinIO.PublicURL = scheme + cfg.MinIO.Endpoint
	}
	return cfg
}

// Validate checks the values required for every run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errs.Missing("OPENAI_API_KEY")
	}
	switch c.TextProvider {
	case "openai":
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errs.Missing("GEMINI_API_KEY")
		}
	default:
		return &errs.ConfigError{Key: "TEXT_PROVIDER", Msg: "must be openai or gemini, got " + strconv.Quote(c.TextProvider)}
	}
	return nil
}

// DefaultFontPaths lists well-known system font files for goos, in lookup
// order.
func DefaultFontPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Windows\Fonts\calibri.ttf`,
			`C:\Windows\Fonts\arial.ttf`,
			`C:\Windows\Fonts\arialbd.ttf`,
		}
	case "darwin":
		return []string{
			"/Library/Fonts/Arial.ttf",
			"/System/Library/Fonts/Supplemental/Arial.ttf",
			"/System/Library/Fonts/Helvetica.ttc",
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		}
	}
}

func fontPathsFromEnv() []string {
	v := strings.TrimSpace(os.Getenv("FONT_PATHS"))
	if v == "" {
		return DefaultFontPaths(runtime.GOOS)
	}
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveAPIKeyFromEnv returns the API key using canonical and legacy env vars.
// Precedence: OAI_API_KEY > OPENAI_API_KEY > "".
func resolveAPIKeyFromEnv() string {
	if v := os.Getenv("OAI_API_KEY"); strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings or plain integer seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := ParseDurationFlexible(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}
