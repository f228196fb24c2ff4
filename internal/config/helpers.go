package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDurationFlexible accepts either standard Go duration strings (e.g., "500ms", "2s")
// or plain integers meaning seconds (e.g., "30" -> 30s).
func ParseDurationFlexible(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration seconds: %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration: %q", s)
}

// MaskSecret returns a redacted representation of a secret showing only the last 4 characters.
// Empty input returns an empty string. Inputs with length <= 4 return "****".
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// Redacted returns a JSON-friendly view of the configuration with secrets masked.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"apiKey":       MaskSecret(c.APIKey),
		"baseURL":      c.BaseURL,
		"imageBaseURL": c.ImageBaseURL,
		"captionModel": c.CaptionModel,
		"imageModel":   c.ImageModel,
		"httpTimeout":  c.HTTPTimeout.String(),
		"textProvider": c.TextProvider,
		"geminiModel":  c.GeminiModel,
		"geminiAPIKey": MaskSecret(c.GeminiAPIKey),
		"instagram": map[string]any{
			"accessToken":       MaskSecret(c.Instagram.AccessToken),
			"pageID":            c.Instagram.PageID,
			"businessAccountID": c.Instagram.BusinessAccountID,
			"graphBaseURL":      c.Instagram.GraphBaseURL,
		},
		"github": map[string]any{
			"enabled": c.GitHub.Enabled(),
			"token":   MaskSecret(c.GitHub.Token),
			"owner":   c.GitHub.Owner,
			"repo":    c.GitHub.Repo,
		},
		"minio": map[string]any{
			"enabled":   c.MinIO.Enabled(),
			"endpoint":  c.MinIO.Endpoint,
			"bucket":    c.MinIO.Bucket,
			"secretKey": MaskSecret(c.MinIO.SecretKey),
			"publicURL": c.MinIO.PublicURL,
		},
		"outputDir": c.OutputDir,
		"fontPaths": c.FontPaths,
		"hook":      c.HookPath,
		"logLevel":  c.LogLevel,
	}
}
