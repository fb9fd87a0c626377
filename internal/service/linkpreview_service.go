package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/toni-krstic/pyjama-portal/internal/cache"
	"github.com/toni-krstic/pyjama-portal/internal/middleware"
	"github.com/toni-krstic/pyjama-portal/internal/models"
)

// LinkPreview is the OpenGraph summary of an external page.
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"site_name"`
}

type LinkPreviewService struct {
	client *resty.Client
}

func NewLinkPreviewService() *LinkPreviewService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "pyjama-portal-linkpreview/1.0")
	return &LinkPreviewService{client: client}
}

// NewLinkPreviewServiceWithClient exists for tests that point the fetcher
// at a local server.
func NewLinkPreviewServiceWithClient(client *resty.Client) *LinkPreviewService {
	return &LinkPreviewService{client: client}
}

// GetPreview fetches the OpenGraph metadata for a URL, serving repeat
// requests from the cache.
func (s *LinkPreviewService) GetPreview(ctx context.Context, rawURL string) (*LinkPreview, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, models.NewValidationError("A valid http(s) URL is required")
	}

	var preview LinkPreview
	err = cache.Aside(ctx, cache.LinkPreviewKey(rawURL), &preview, cache.LinkPreviewTTL, func() error {
		fetched, fetchErr := s.fetch(ctx, rawURL)
		if fetchErr != nil {
			middleware.LinkPreviewFetches.WithLabelValues("error").Inc()
			return fetchErr
		}
		middleware.LinkPreviewFetches.WithLabelValues("ok").Inc()
		preview = *fetched
		return nil
	})
	if err != nil {
		// A failed fetch degrades to a bare preview. Nothing is cached so
		// the next request retries the target.
		middleware.Logger.WarnContext(ctx, "link preview fetch failed",
			"url", rawURL, "error", err)
		return &LinkPreview{URL: rawURL}, nil
	}
	return &preview, nil
}

func (s *LinkPreviewService) fetch(ctx context.Context, rawURL string) (*LinkPreview, error) {
	resp, err := s.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	if resp.IsError() {
		return nil, models.NewUpstreamError(fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}

	preview := &LinkPreview{URL: rawURL}
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		if prop == "" {
			prop, _ = sel.Attr("name")
		}
		content, _ := sel.Attr("content")
		if content == "" {
			return
		}
		switch prop {
		case "og:title":
			preview.Title = content
		case "og:description", "description":
			if preview.Description == "" || prop == "og:description" {
				preview.Description = content
			}
		case "og:image":
			preview.Image = content
		case "og:site_name":
			preview.SiteName = content
		}
	})
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return preview, nil
}
