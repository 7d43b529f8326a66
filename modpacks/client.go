package modpacks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"modpack-server-installer/config"
	"modpack-server-installer/logger"

	"go.uber.org/zap"
)

// Doer is the part of *http.Client used for catalog and file requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles communication with the modpacks.ch API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	// Workers bounds concurrent version resolution; <= 0 resolves every
	// version of a pack at once.
	Workers int
	Log     *zap.SugaredLogger
}

// NewClient creates a new catalog API client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is not configured")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL '%s': %w", cfg.APIBaseURL, err)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}

	return &Client{
		BaseURL:    cfg.APIBaseURL,
		UserAgent:  cfg.UserAgent,
		HTTPClient: NewHTTPClient(cfg.UserAgent, cfg.HTTPTimeout),
		Workers:    cfg.Threads,
	}, nil
}

// NewHTTPClient returns an http.Client that sends userAgent on every request.
// A zero timeout keeps the http.Client default.
func NewHTTPClient(userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

func (c *Client) log() *zap.SugaredLogger {
	if c.Log != nil {
		return c.Log
	}
	return logger.Log
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// VersionURL is the API location of a version manifest.
func (c *Client) VersionURL(packID, versionID int64) string {
	return c.endpoint(fmt.Sprintf("public/modpack/%d/%d", packID, versionID))
}

func (c *Client) makeRequest(ctx context.Context, path string, queryParams url.Values, target statusCarrier) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrManifestUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d, body: %s", ErrManifestUnavailable, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrManifestUnavailable, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: failed to decode json response: %v", ErrManifestMalformed, err)
	}
	return target.apiError()
}

// GetPack resolves a pack and every one of its versions. Versions that fail
// to resolve are logged and left out; the pack is returned as long as the
// pack manifest itself resolved. Versions are ordered newest first.
func (c *Client) GetPack(ctx context.Context, id int64) (*Pack, error) {
	var resp packResponse
	if err := c.makeRequest(ctx, fmt.Sprintf("public/modpack/%d", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get modpack %d: %w", id, err)
	}
	if err := resp.validate(); err != nil {
		return nil, fmt.Errorf("failed to get modpack %d: %w", id, err)
	}

	pack := &Pack{
		ID:          id,
		Name:        *resp.Name,
		Synopsis:    resp.Synopsis,
		Description: resp.Description,
	}
	pack.Versions = c.resolveVersions(ctx, id, *resp.Versions)
	return pack, nil
}

// resolveVersions fetches every referenced version on a bounded pool and
// waits for all of them to settle.
func (c *Client) resolveVersions(ctx context.Context, packID int64, refs []packVersionRef) []Version {
	slots := make([]*Version, len(refs))

	workers := c.Workers
	if workers <= 0 || workers > len(refs) {
		workers = len(refs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := c.GetVersion(ctx, packID, refs[i].ID)
				if err != nil {
					c.log().Warnw("Failed to resolve version",
						zap.Int64("pack_id", packID),
						zap.Int64("version_id", refs[i].ID),
						zap.Error(err),
					)
					continue
				}
				slots[i] = v // each index is written by exactly one worker
			}
		}()
	}
	for i := range refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	versions := make([]Version, 0, len(refs))
	for _, v := range slots {
		if v != nil {
			versions = append(versions, *v)
		}
	}
	// The API lists versions oldest first.
	slices.Reverse(versions)
	return versions
}

// GetVersion resolves a single version manifest.
func (c *Client) GetVersion(ctx context.Context, packID, versionID int64) (*Version, error) {
	var resp versionResponse
	if err := c.makeRequest(ctx, fmt.Sprintf("public/modpack/%d/%d", packID, versionID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get version %d of modpack %d: %w", versionID, packID, err)
	}
	if err := resp.validate(); err != nil {
		return nil, fmt.Errorf("failed to get version %d of modpack %d: %w", versionID, packID, err)
	}
	v := resp.toVersion(packID, versionID)
	return &v, nil
}

// Search returns the ids of up to max packs matching term.
func (c *Client) Search(ctx context.Context, term string, max int) ([]int64, error) {
	if max <= 0 {
		return nil, errors.New("search limit must be positive")
	}
	params := url.Values{}
	params.Set("term", term)

	var resp searchResponse
	if err := c.makeRequest(ctx, fmt.Sprintf("public/modpack/search/%d", max), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search for '%s': %w", term, err)
	}
	if resp.Packs == nil {
		return nil, fmt.Errorf("failed to search for '%s': %w: missing 'packs'", term, ErrManifestMalformed)
	}
	return *resp.Packs, nil
}

// SearchPacks searches and resolves every matching pack concurrently.
// Packs that fail to resolve are logged and skipped; result order follows
// the search ranking.
func (c *Client) SearchPacks(ctx context.Context, term string, max int) ([]*Pack, error) {
	ids, err := c.Search(ctx, term, max)
	if err != nil {
		return nil, err
	}

	slots := make([]*Pack, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			p, err := c.GetPack(ctx, id)
			if err != nil {
				c.log().Warnw("Failed to resolve search result", zap.Int64("pack_id", id), zap.Error(err))
				return
			}
			slots[i] = p
		}(i, id)
	}
	wg.Wait()

	packs := make([]*Pack, 0, len(ids))
	for _, p := range slots {
		if p != nil {
			packs = append(packs, p)
		}
	}
	return packs, nil
}
