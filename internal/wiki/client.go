package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// Client is a MediaWiki API client.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	config Config
}

var _ service.Wiki = (*Client)(nil)

// NewClient creates a wiki client. A configured token is sent as a bearer
// token on every request.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wiki config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   transport,
		}
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		logger: logger,
		config: cfg,
	}, nil
}

type revisionResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Revisions []struct {
				Timestamp time.Time `json:"timestamp"`
				Slots     struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
				RevID int64 `json:"revid"`
			} `json:"revisions"`
			Missing bool `json:"missing"`
			Invalid bool `json:"invalid"`
		} `json:"pages"`
	} `json:"query"`
}

// Page fetches the latest revision of a page, following redirects. The
// returned page keeps the requested title.
func (c *Client) Page(ctx context.Context, title string) (*model.Page, error) {
	params := url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"rvprop":  {"content|ids|timestamp"},
		"rvslots": {"main"},
		"titles":  {title},
	}

	var resp revisionResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch page %q: %w", title, err)
	}
	if len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrPageNotFound, title)
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid || len(p.Revisions) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrPageNotFound, title)
	}

	rev := p.Revisions[0]
	text := rev.Slots.Main.Content
	c.logger.Debug("fetched page", "title", p.Title, "revision", rev.RevID, "bytes", len(text))

	return &model.Page{
		Title:      title,
		Text:       text,
		Templates:  markup.Parse(text).TemplateNames(),
		RevisionID: rev.RevID,
		Timestamp:  rev.Timestamp,
	}, nil
}

type categoryResponse struct {
	Continue struct {
		CMContinue string `json:"cmcontinue"`
	} `json:"continue"`
	Query struct {
		Members []struct {
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// CategoryMembers lists the main-namespace pages of a category in sort-key order.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	if !strings.HasPrefix(category, "Category:") {
		category = "Category:" + category
	}

	var titles []string
	cont := ""
	for {
		params := url.Values{
			"action":      {"query"},
			"list":        {"categorymembers"},
			"cmtitle":     {category},
			"cmnamespace": {"0"},
			"cmlimit":     {"500"},
		}
		if cont != "" {
			params.Set("cmcontinue", cont)
		}

		var resp categoryResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", category, err)
		}
		for _, m := range resp.Query.Members {
			titles = append(titles, m.Title)
		}
		if resp.Continue.CMContinue == "" {
			return titles, nil
		}
		cont = resp.Continue.CMContinue
	}
}

type imageInfoResponse struct {
	Query struct {
		Pages []struct {
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
			Missing bool `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// FileURL resolves a file name to the URL of its current upload.
func (c *Client) FileURL(ctx context.Context, name string) (string, error) {
	if !strings.HasPrefix(name, "File:") {
		name = "File:" + name
	}
	params := url.Values{
		"action": {"query"},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
		"titles": {name},
	}

	var resp imageInfoResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing || len(resp.Query.Pages[0].ImageInfo) == 0 {
		return "", fmt.Errorf("%w: %s", common.ErrPageNotFound, name)
	}
	return resp.Query.Pages[0].ImageInfo[0].URL, nil
}

// Download streams a resolved file URL into w.
func (c *Client) Download(ctx context.Context, fileURL string, w io.Writer) error {
	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if err != nil {
			return common.Permanent(err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		if err := statusError(resp); err != nil {
			return err
		}
		_, err = io.Copy(w, resp.Body)
		return err
	}, c.retryOptions())
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	endpoint := c.config.APIURL + "?" + params.Encode()

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return common.Permanent(err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &common.RetryableError{Err: err, Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		if err := statusError(resp); err != nil {
			return err
		}

		var envelope struct {
			Error *struct {
				Code string `json:"code"`
				Info string `json:"info"`
			} `json:"error"`
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		if envelope.Error != nil {
			if envelope.Error.Code == "ratelimited" || envelope.Error.Code == "maxlag" {
				return fmt.Errorf("%w: %s", common.ErrRateLimit, envelope.Error.Info)
			}
			return common.Permanent(fmt.Errorf("api error %s: %s", envelope.Error.Code, envelope.Error.Info))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, c.retryOptions())
}

func (c *Client) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  c.config.RetryAttempts,
		InitialDelay: c.config.RetryDelay,
		MaxDelay:     30 * c.config.RetryDelay,
		Multiplier:   2.0,
	}
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", common.ErrWikiUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return common.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
