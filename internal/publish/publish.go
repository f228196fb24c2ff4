// Package publish posts a generated image to Instagram through the Facebook
// Graph API.
//
// A publish is a fixed, linear sequence of named steps. Each step either
// hands its output to the next one or ends the run; the returned Result
// records which step finished last, so callers never see an error value.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/postgen/internal/config"
	"github.com/hyperifyio/postgen/internal/errs"
)

// Step names one stage of a publish.
type Step string

const (
	StepCredentials     Step = "credentials"
	StepPageToken       Step = "page_token"
	StepBusinessAccount Step = "business_account"
	StepImageURL        Step = "image_url"
	StepMediaContainer  Step = "media_container"
	StepPublish         Step = "publish"
	StepDone            Step = "done"
)

// Result is the outcome of one publish. On failure Step is the step that
// failed.
type Result struct {
	Success bool
	MediaID string
	Error   string
	Message string
	Step    Step
}

// Publisher runs publishes with fixed credentials and image hosts.
type Publisher struct {
	cfg   config.Instagram
	graph *GraphClient
	hosts []ImageHost
	log   zerolog.Logger
}

// New returns a Publisher. hosts are tried in order before the page photo
// upload, which always runs last.
func New(cfg config.Instagram, graph *GraphClient, hosts []ImageHost, log zerolog.Logger) *Publisher {
	return &Publisher{cfg: cfg, graph: graph, hosts: hosts, log: log}
}

// Caption joins caption and hashtags with a blank line; empty hashtags leave
// caption as is.
func Caption(caption, hashtags string) string {
	if strings.TrimSpace(hashtags) == "" {
		return caption
	}
	return caption + "\n\n" + hashtags
}

// state carries values between steps.
type state struct {
	imagePath  string
	caption    string
	pageToken  string
	igID       string
	imageURL   string
	creationID string
	mediaID    string
}

type step struct {
	name Step
	run  func(ctx context.Context, s *state) error
}

func (p *Publisher) steps() []step {
	return []step{
		{StepCredentials, p.checkCredentials},
		{StepPageToken, p.exchangeToken},
		{StepBusinessAccount, p.resolveAccount},
		{StepImageURL, p.resolveImageURL},
		{StepMediaContainer, p.createContainer},
		{StepPublish, p.publish},
	}
}

// Publish posts imagePath with the combined caption. It never panics and never
// returns an error; failures are reported in the Result.
func (p *Publisher) Publish(ctx context.Context, imagePath, caption, hashtags string) (res Result) {
	s := &state{imagePath: imagePath, caption: Caption(caption, hashtags)}
	current := StepCredentials
	defer func() {
		if r := recover(); r != nil {
			res = p.failure(current, fmt.Errorf("panic: %v", r))
		}
	}()

	for _, st := range p.steps() {
		current = st.name
		p.log.Debug().Str("step", string(st.name)).Msg("Publish step")
		if err := st.run(ctx, s); err != nil {
			return p.failure(st.name, err)
		}
	}
	return Result{
		Success: true,
		MediaID: s.mediaID,
		Message: "Image uploaded successfully to Instagram",
		Step:    StepDone,
	}
}

func (p *Publisher) failure(step Step, err error) Result {
	p.log.Warn().Err(err).Str("step", string(step)).Msg("Failed to upload to Instagram")
	return Result{
		Success: false,
		Error:   err.Error(),
		Message: "Failed to upload to Instagram: " + err.Error(),
		Step:    step,
	}
}

func (p *Publisher) checkCredentials(_ context.Context, s *state) error {
	if strings.TrimSpace(p.cfg.AccessToken) == "" {
		return errs.Missing("INSTAGRAM_ACCESS_TOKEN")
	}
	if strings.TrimSpace(p.cfg.PageID) == "" {
		return errs.Missing("FACEBOOK_PAGE_ID")
	}
	if _, err := os.Stat(s.imagePath); err != nil {
		return &errs.ConfigError{Key: "image", Msg: "image file not found: " + s.imagePath}
	}
	return nil
}

func (p *Publisher) exchangeToken(ctx context.Context, s *state) error {
	p.log.Info().Msg("Getting page access token")
	tok, err := p.graph.PageAccessToken(ctx, p.cfg.PageID, p.cfg.AccessToken)
	if err != nil {
		return err
	}
	s.pageToken = tok
	return nil
}

func (p *Publisher) resolveAccount(ctx context.Context, s *state) error {
	p.log.Info().Msg("Getting Instagram business account id")
	id, err := p.graph.BusinessAccountID(ctx, p.cfg.PageID, s.pageToken)
	if err != nil {
		// An unlinked page is final; the configured id only stands in when
		// the lookup itself failed.
		if errors.Is(err, ErrNoLinkedAccount) {
			return err
		}
		if fallback := strings.TrimSpace(p.cfg.BusinessAccountID); fallback != "" {
			p.log.Warn().Err(err).Str("account_id", fallback).Msg("Using configured Instagram business account id")
			s.igID = fallback
			return nil
		}
		return err
	}
	p.log.Info().Str("account_id", id).Msg("Instagram business account resolved")
	s.igID = id
	return nil
}

func (p *Publisher) resolveImageURL(ctx context.Context, s *state) error {
	for _, h := range p.hosts {
		p.log.Info().Str("host", h.Name()).Msg("Uploading image")
		u, err := h.Upload(ctx, s.imagePath)
		if err == nil && u != "" {
			p.log.Info().Str("host", h.Name()).Str("url", u).Msg("Image uploaded")
			s.imageURL = u
			return nil
		}
		p.log.Warn().Err(err).Str("host", h.Name()).Msg("Image host failed, falling through")
	}

	page := &pagePhotoHost{graph: p.graph, pageID: p.cfg.PageID, token: s.pageToken}
	p.log.Info().Str("host", page.Name()).Msg("Uploading image")
	u, err := page.Upload(ctx, s.imagePath)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	s.imageURL = u
	return nil
}

func (p *Publisher) createContainer(ctx context.Context, s *state) error {
	p.log.Info().Msg("Creating Instagram media container")
	id, err := p.graph.CreateMediaContainer(ctx, s.igID, s.pageToken, s.imageURL, s.caption)
	if err != nil {
		return err
	}
	s.creationID = id
	return nil
}

func (p *Publisher) publish(ctx context.Context, s *state) error {
	p.log.Info().Msg("Publishing to Instagram")
	id, err := p.graph.PublishMedia(ctx, s.igID, s.pageToken, s.creationID)
	if err != nil {
		return err
	}
	s.mediaID = id
	return nil
}
