// Package favicon finds and downloads icons for bookmarked pages.
package favicon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookmarkd/internal/config"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

const (
	maxPageBytes = 2 << 20
	maxIconBytes = 1 << 20
)

var errTooLarge = errors.New("response exceeds size limit")

// Resolver implements services.FaviconResolver over HTTP.
// It scans the page for a declared icon, then falls back to a favicon service.
type Resolver struct {
	client      *http.Client
	timeout     time.Duration
	fallbackURL string
	logger      *slog.Logger
}

// NewResolver creates a resolver. A nil client means http.DefaultClient.
func NewResolver(cfg config.FaviconConfig, client *http.Client, logger *slog.Logger) services.FaviconResolver {
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		client:      client,
		timeout:     timeout,
		fallbackURL: cfg.FallbackURL,
		logger:      logger,
	}
}

// Resolve returns the page's icon, or nil if neither the page nor the fallback service yield one
func (r *Resolver) Resolve(ctx context.Context, pageURL string) *models.Icon {
	icon, err := r.fromPage(ctx, pageURL)
	if err == nil {
		r.logger.Info("retrieved favicon", "url", pageURL, "content_type", icon.ContentType)
		return icon
	}
	r.logger.Debug("page favicon lookup failed", "url", pageURL, "error", err)

	icon, err = r.fromFallback(ctx, pageURL)
	if err == nil {
		r.logger.Info("retrieved favicon from fallback service", "url", pageURL)
		return icon
	}
	r.logger.Info("no favicon found", "url", pageURL, "error", err)
	return nil
}

func (r *Resolver) fromPage(ctx context.Context, pageURL string) (*models.Icon, error) {
	body, _, finalURL, err := r.get(ctx, pageURL, maxPageBytes, true)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	href := findIconHref(bytes.NewReader(body))
	if href == "" {
		return nil, errors.New("page declares no icon")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parse icon href %q: %w", href, err)
	}
	iconURL := finalURL.ResolveReference(ref)

	return r.fetchIcon(ctx, iconURL.String())
}

func (r *Resolver) fromFallback(ctx context.Context, pageURL string) (*models.Icon, error) {
	if r.fallbackURL == "" {
		return nil, errors.New("no fallback service configured")
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("no hostname in %q", pageURL)
	}
	target := strings.ReplaceAll(r.fallbackURL, "{domain}", url.QueryEscape(u.Hostname()))
	return r.fetchIcon(ctx, target)
}

func (r *Resolver) fetchIcon(ctx context.Context, iconURL string) (*models.Icon, error) {
	data, contentType, _, err := r.get(ctx, iconURL, maxIconBytes, false)
	if err != nil {
		return nil, fmt.Errorf("fetch icon %s: %w", iconURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty icon body from %s", iconURL)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.Icon{ContentType: contentType, Data: data}, nil
}

// get performs one GET bounded by the resolver timeout. With truncate set, bodies
// over limit are cut at limit; otherwise they are rejected.
func (r *Resolver) get(ctx context.Context, target string, limit int64, truncate bool) ([]byte, string, *url.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", nil, err
	}
	req.Header.Set("User-Agent", "bookmarkd-favicon/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", nil, err
	}
	if int64(len(data)) > limit {
		if !truncate {
			return nil, "", nil, errTooLarge
		}
		data = data[:limit]
	}

	return data, resp.Header.Get("Content-Type"), resp.Request.URL, nil
}
