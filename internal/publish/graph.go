package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/postgen/internal/errs"
)

// GraphClient calls the Facebook Graph API endpoints used to post to an
// Instagram business account. Every call is a single attempt.
type GraphClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGraphClient returns a client rooted at baseURL, e.g.
// https://graph.facebook.com/v18.0. A zero timeout means none.
func NewGraphClient(baseURL string, timeout time.Duration) *GraphClient {
	return &GraphClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PageAccessToken exchanges a long-lived user token for the page's token.
func (g *GraphClient) PageAccessToken(ctx context.Context, pageID, userToken string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	q := url.Values{"fields": {"access_token"}, "access_token": {userToken}}
	if err := g.do(ctx, "get page access token", http.MethodGet, "/"+pageID, q, nil, "", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errs.Upstream("graph", "get page access token", errors.New("no access_token in response"))
	}
	return out.AccessToken, nil
}

// ErrNoLinkedAccount means the page answered but has no Instagram business
// account linked to it.
var ErrNoLinkedAccount = errors.New("no Instagram Business Account linked to this Facebook Page")

// BusinessAccountID returns the Instagram business account linked to pageID.
func (g *GraphClient) BusinessAccountID(ctx context.Context, pageID, token string) (string, error) {
	var out struct {
		Account *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	q := url.Values{"fields": {"instagram_business_account"}, "access_token": {token}}
	if err := g.do(ctx, "get instagram account", http.MethodGet, "/"+pageID, q, nil, "", &out); err != nil {
		return "", err
	}
	if out.Account == nil || out.Account.ID == "" {
		return "", ErrNoLinkedAccount
	}
	return out.Account.ID, nil
}

// UploadUnpublishedPhoto uploads the file at path to the page without
// publishing it and returns the photo id.
func (g *GraphClient) UploadUnpublishedPhoto(ctx context.Context, pageID, token, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	_ = mw.WriteField("published", "false")
	_ = mw.WriteField("access_token", token)
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := g.do(ctx, "upload photo", http.MethodPost, "/"+pageID+"/photos", nil, &body, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errs.Upstream("graph", "upload photo", errors.New("no photo id in response"))
	}
	return out.ID, nil
}

// LargestImageURL returns the source URL of the photo's largest rendition by
// width × height.
func (g *GraphClient) LargestImageURL(ctx context.Context, photoID, token string) (string, error) {
	var out struct {
		Images []struct {
			Width  int    `json:"width"`
			Height int    `json:"height"`
			Source string `json:"source"`
		} `json:"images"`
	}
	q := url.Values{"fields": {"images"}, "access_token": {token}}
	if err := g.do(ctx, "get photo images", http.MethodGet, "/"+photoID, q, nil, "", &out); err != nil {
		return "", err
	}
	best, bestArea := "", -1
	for _, im := range out.Images {
		if area := im.Width * im.Height; area > bestArea {
			best, bestArea = im.Source, area
		}
	}
	if best == "" {
		return "", errs.Upstream("graph", "get photo images", errors.New("no images found for photo"))
	}
	return best, nil
}

// CreateMediaContainer stages a post and returns its creation id.
func (g *GraphClient) CreateMediaContainer(ctx context.Context, igID, token, imageURL, caption string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	q := url.Values{"image_url": {imageURL}, "caption": {caption}, "access_token": {token}}
	if err := g.do(ctx, "create media container", http.MethodPost, "/"+igID+"/media", q, nil, "", &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errs.Upstream("graph", "create media container", errors.New("no creation id in response"))
	}
	return out.ID, nil
}

// PublishMedia publishes a staged container and returns the media id.
func (g *GraphClient) PublishMedia(ctx context.Context, igID, token, creationID string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	q := url.Values{"creation_id": {creationID}, "access_token": {token}}
	if err := g.do(ctx, "publish media", http.MethodPost, "/"+igID+"/media_publish", q, nil, "", &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errs.Upstream("graph", "publish media", errors.New("no media id in response"))
	}
	return out.ID, nil
}

func (g *GraphClient) do(ctx context.Context, op, method, path string, q url.Values, body io.Reader, contentType string, out any) error {
	endpoint := g.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errs.Upstream("graph", op, err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close() // best-effort close
	if readErr != nil {
		return errs.Upstream("graph", op, fmt.Errorf("read response body: %w", readErr))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.UpstreamStatus("graph", op, resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Upstream("graph", op, fmt.Errorf("decode response: %w; body: %s", err, errs.Truncate(string(respBody), 1000)))
	}
	return nil
}
