// SPDX-License-Identifier: MPL-2.0

package adoptium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
)

const (
	// DefaultBaseURL is the public Adoptium API.
	DefaultBaseURL = "https://api.adoptium.net"

	// DefaultImageType requests runtime-only images.
	DefaultImageType = "jre"

	// DefaultVendor is the build vendor requested from the feed.
	DefaultVendor = "eclipse"

	// pageSize is the number of versions requested. Only the first page is
	// consulted; with a descending sort it holds the newest releases.
	pageSize = 10

	// maxJSONResponseBytes is the upper bound on a feed response body (10 MB).
	maxJSONResponseBytes = 10 << 20
)

// errMalformedFeed is returned for feed entries that cannot name a runtime.
var errMalformedFeed = errors.New("malformed release feed")

type (
	// Query selects the releases listed by ListVersions.
	Query struct {
		OS   string
		Arch string
	}

	// Client talks to the Adoptium API.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
		imageType  string
		vendor     string
		logger     *log.Logger
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	releaseVersions struct {
		Versions []Version `json:"versions"`
	}
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(a *Client) {
		a.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers and mirrors.
func WithBaseURL(base string) ClientOption {
	return func(a *Client) {
		a.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(a *Client) {
		a.userAgent = ua
	}
}

// WithImageType selects "jre" or "jdk" images.
func WithImageType(t string) ClientOption {
	return func(a *Client) {
		a.imageType = t
	}
}

// WithVendor selects the build vendor.
func WithVendor(v string) ClientOption {
	return func(a *Client) {
		a.vendor = v
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) ClientOption {
	return func(a *Client) {
		a.logger = logging.OrDiscard(l)
	}
}

// NewClient creates a Client with defaults for the public Eclipse Temurin feed.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "rlaunch/dev",
		imageType:  DefaultImageType,
		vendor:     DefaultVendor,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReleaseVersionsURL returns the feed URL for q.
func (c *Client) ReleaseVersionsURL(q Query) string {
	params := url.Values{}
	params.Set("architecture", q.Arch)
	params.Set("heap_size", "normal")
	params.Set("image_type", c.imageType)
	params.Set("jvm_impl", "hotspot")
	params.Set("lts", "false")
	params.Set("os", q.OS)
	params.Set("page", "0")
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("project", "jdk")
	params.Set("release_type", "ga")
	params.Set("sort_method", "DEFAULT")
	params.Set("sort_order", "DESC")
	params.Set("vendor", c.vendor)
	return c.baseURL + "/v3/info/release_versions?" + params.Encode()
}

// BinaryURL returns the download URL of the runtime archive for v.
func (c *Client) BinaryURL(v Version, osName, arch string) string {
	return fmt.Sprintf("%s/v3/binary/version/%s/%s/%s/%s/hotspot/normal/%s?project=jdk",
		c.baseURL,
		url.PathEscape("jdk-"+v.OpenJDKVersion),
		url.PathEscape(osName),
		url.PathEscape(arch),
		url.PathEscape(c.imageType),
		url.PathEscape(c.vendor),
	)
}

// ListVersions returns the first page of releases matching q, newest first.
// A feed that reports no results yields an empty slice.
func (c *Client) ListVersions(ctx context.Context, q Query) ([]Version, error) {
	feedURL := c.ReleaseVersionsURL(q)
	c.logger.Debug("querying release feed", "url", feedURL)

	resp, err := c.doRequest(ctx, feedURL)
	if err != nil {
		return nil, issue.Wrap(err, issue.KindNetwork, "query release feed", feedURL)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	// The feed answers 404 when a query has no results at all.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindNetwork).
			WithOperation("query release feed").
			WithResource(feedURL).
			Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode)).
			BuildError()
	}

	versions, err := parseVersions(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return nil, issue.Wrap(err, issue.KindDecode, "decode release feed", feedURL)
	}
	SortDescending(versions)
	return versions, nil
}

// SelectBest queries the feed and returns the newest release of major.
func (c *Client) SelectBest(ctx context.Context, major uint32, osName, arch string) (Version, error) {
	versions, err := c.ListVersions(ctx, Query{OS: osName, Arch: arch})
	if err != nil {
		return Version{}, err
	}

	best, err := Select(versions, major)
	if err != nil {
		return Version{}, issue.NewErrorContext().
			WithKind(issue.KindEmptyResult).
			WithOperation("select runtime version").
			WithResource(fmt.Sprintf("java %d for %s/%s", major, osName, arch)).
			WithSuggestion("Check that the feed publishes builds for this platform").
			WithSuggestion("Try a different java.major or java.image_type").
			Wrap(err).
			BuildError()
	}
	c.logger.Debug("selected runtime version", "version", best.String(), "candidates", len(versions))
	return best, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func parseVersions(body io.Reader) ([]Version, error) {
	var raw releaseVersions
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding versions: %w", err)
	}
	for i, v := range raw.Versions {
		if v.OpenJDKVersion == "" {
			return nil, fmt.Errorf("%w: entry %d has no openjdk_version", errMalformedFeed, i)
		}
	}
	return raw.Versions, nil
}
