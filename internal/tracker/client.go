package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jira/internal/logging"
)

const (
	apiPrefix        = "/rest/api/2"
	defaultPageSize  = 50
	defaultMaxPages  = 200
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "jira-cli"
	maxErrorBody     = 64 << 10
)

// Auth methods.
const (
	AuthBasic  = "basic"
	AuthBearer = "pat"
)

// Credentials authenticate requests. Basic auth sends Username and Token;
// bearer auth sends Token as a personal access token.
type Credentials struct {
	Method   string
	Username string
	Token    string
}

// Client talks to the tracker REST API.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	pageSize   int
	maxPages   int
	userAgent  string
	logger     *slog.Logger
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithPaging sets the search page size and the page cap.
func WithPaging(pageSize, maxPages int) Option {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

// WithLogger attaches a logger for request tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "tracker")
	}
}

// New creates a client. baseURL must include the scheme.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("tracker base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("tracker base url %q is not absolute", baseURL)
	}
	creds.Method = strings.ToLower(strings.TrimSpace(creds.Method))
	switch creds.Method {
	case "", AuthBasic:
		creds.Method = AuthBasic
		if creds.Username == "" {
			return nil, errors.New("basic auth requires a username")
		}
	case AuthBearer:
	default:
		return nil, fmt.Errorf("unsupported auth method %q", creds.Method)
	}
	if strings.TrimSpace(creds.Token) == "" {
		return nil, errors.New("tracker api token required")
	}

	client := &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		pageSize:   defaultPageSize,
		maxPages:   defaultMaxPages,
		userAgent:  defaultUserAgent,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// IssueURL returns the browser link for an issue.
func (c *Client) IssueURL(key string) string {
	return c.baseURL + "/browse/" + url.PathEscape(key)
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *Client) authorize(req *http.Request) {
	switch c.creds.Method {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	default:
		req.SetBasicAuth(c.creds.Username, c.creds.Token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
}

// doJSON sends a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

func (c *Client) send(op string, req *http.Request, out any) error {
	c.authorize(req)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%s: execute request (latency=%v): %w", op, latency, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("tracker request",
		logging.String("op", op),
		logging.String("method", req.Method),
		logging.String("path", req.URL.Path),
		logging.Int(logging.FieldStatus, resp.StatusCode),
		logging.Any("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newServiceError(op, resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
