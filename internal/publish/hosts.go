package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyperifyio/postgen/internal/config"
	"github.com/hyperifyio/postgen/internal/errs"
)

// ImageHost makes a local image reachable at a public URL.
type ImageHost interface {
	Name() string
	Upload(ctx context.Context, path string) (string, error)
}

// GitHubHost commits images to images/<file> in a repository and serves them
// from the raw content domain.
type GitHubHost struct {
	client  *github.Client
	owner   string
	repo    string
	rawBase string
}

// NewGitHubHost builds a token-authenticated host. APIBaseURL overrides the
// REST endpoint for GitHub Enterprise or tests.
func NewGitHubHost(cfg config.GitHub, httpClient *http.Client) (*GitHubHost, error) {
	client := github.NewClient(httpClient).WithAuthToken(cfg.Token)
	if api := strings.TrimSpace(cfg.APIBaseURL); api != "" {
		u, err := url.Parse(strings.TrimRight(api, "/") + "/")
		if err != nil {
			return nil, &errs.ConfigError{Key: "GITHUB_API_URL", Msg: err.Error()}
		}
		client.BaseURL = u
	}
	raw := strings.TrimRight(cfg.RawBaseURL, "/")
	if raw == "" {
		raw = "https://raw.githubusercontent.com"
	}
	return &GitHubHost{client: client, owner: cfg.Owner, repo: cfg.Repo, rawBase: raw}, nil
}

func (h *GitHubHost) Name() string { return "github" }

// Upload creates or updates images/<file> on the default branch.
func (h *GitHubHost) Upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	branch := h.defaultBranch(ctx)
	name := filepath.Base(path)
	repoPath := "images/" + name

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr("Upload image: " + name),
		Content: data,
		Branch:  github.Ptr(branch),
	}
	existing, _, _, err := h.client.Repositories.GetContents(ctx, h.owner, h.repo, repoPath, &github.RepositoryContentGetOptions{Ref: branch})
	if err == nil && existing != nil && existing.GetSHA() != "" {
		opts.SHA = github.Ptr(existing.GetSHA())
		_, _, err = h.client.Repositories.UpdateFile(ctx, h.owner, h.repo, repoPath, opts)
	} else {
		_, _, err = h.client.Repositories.CreateFile(ctx, h.owner, h.repo, repoPath, opts)
	}
	if err != nil {
		return "", h.handleGithubError("upload "+repoPath, err)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", h.rawBase, h.owner, h.repo, branch, repoPath), nil
}

// defaultBranch falls back to "main" when the repository lookup fails.
func (h *GitHubHost) defaultBranch(ctx context.Context) string {
	repo, _, err := h.client.Repositories.Get(ctx, h.owner, h.repo)
	if err != nil || repo.GetDefaultBranch() == "" {
		return "main"
	}
	return repo.GetDefaultBranch()
}

func (h *GitHubHost) handleGithubError(op string, err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		if errResp.Response.StatusCode == http.StatusNotFound {
			return errs.UpstreamStatus("github", op, http.StatusNotFound,
				[]byte(fmt.Sprintf("repository %s/%s not found; create it first or check the repository name", h.owner, h.repo)))
		}
		return errs.UpstreamStatus("github", op, errResp.Response.StatusCode, []byte(errResp.Message))
	}
	return errs.Upstream("github", op, err)
}

// MinIOHost stores images in an S3-compatible bucket that is publicly
// readable under PublicURL.
type MinIOHost struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewMinIOHost connects to cfg.Endpoint with static credentials.
func NewMinIOHost(cfg config.MinIO) (*MinIOHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "us-east-1",
	})
	if err != nil {
		return nil, &errs.ConfigError{Key: "MINIO_ENDPOINT", Msg: err.Error()}
	}
	return &MinIOHost{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		now:       time.Now,
	}, nil
}

func (h *MinIOHost) Name() string { return "minio" }

// Upload puts the file at posts/<yyyy>/<mm>/<uuid><ext>.
func (h *MinIOHost) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".png"
	}
	now := h.now()
	objectName := fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)
	_, err = h.client.PutObject(ctx, h.bucket, objectName, f, st.Size(), minio.PutObjectOptions{
		ContentType: "image/png",
		UserMetadata: map[string]string{
			"original-filename": filepath.Base(path),
			"uploaded-at":       now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", errs.Upstream("minio", "put "+objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", h.publicURL, h.bucket, objectName), nil
}

// pagePhotoHost uploads the image as an unpublished page photo and returns
// its largest rendition. It needs the page token, so it is built per run.
type pagePhotoHost struct {
	graph  *GraphClient
	pageID string
	token  string
}

func (h *pagePhotoHost) Name() string { return "facebook" }

func (h *pagePhotoHost) Upload(ctx context.Context, path string) (string, error) {
	photoID, err := h.graph.UploadUnpublishedPhoto(ctx, h.pageID, h.token, path)
	if err != nil {
		return "", err
	}
	return h.graph.LargestImageURL(ctx, photoID, h.token)
}
