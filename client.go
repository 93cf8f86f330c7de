package evds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"evds/frame"
)

const (
	defaultBaseURL        = "https://evds2.tcmb.gov.tr/service/evds"
	defaultTimeoutSeconds = 30
	defaultUserAgent      = "evds-go/0.1"
	defaultFetchWorkers   = 4
)

// Config carries the client's settings. The zero value is usable once Key is
// set; every other field falls back to a default.
type Config struct {
	// Key is the EVDS API key, passed as a query parameter on every request.
	Key          string
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	FetchWorkers int
	// Logger receives request traces and recoverable warnings.
	Logger *slog.Logger
	// Output receives the human-readable listings GetGroupData and
	// ShowGroupInfo print. Defaults to stdout.
	Output io.Writer
}

// ConfigFromEnv builds a Config from the EVDS_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		Key:          strings.TrimSpace(os.Getenv("EVDS_KEY")),
		BaseURL:      getenv("EVDS_BASE_URL", defaultBaseURL),
		Timeout:      time.Duration(getenvInt("EVDS_TIMEOUT_SECONDS", defaultTimeoutSeconds)) * time.Second,
		UserAgent:    getenv("EVDS_USER_AGENT", defaultUserAgent),
		FetchWorkers: getenvInt("EVDS_FETCH_WORKERS", defaultFetchWorkers),
	}
}

// Client talks to the EVDS service and holds the metadata catalog once it
// has been fetched. The catalog is read-mostly; construction is serialized,
// concurrent readers are safe.
type Client struct {
	config Config
	client *http.Client
	log    *slog.Logger
	out    io.Writer

	mu         sync.Mutex
	categories []Category
	groups     []Group
	allSeries  []CatalogSeries
}

// New builds a client from the environment.
func New() *Client {
	return NewWithConfig(ConfigFromEnv())
}

// NewWithConfig builds a client, filling unset fields with defaults.
func NewWithConfig(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = defaultFetchWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    cfg.Logger,
		out:    cfg.Output,
	}
}

// The service takes its parameters path-style, ampersand-joined with no "?".
func (c *Client) endpoint(parts ...string) string {
	return c.config.BaseURL + "/" + strings.Join(parts, "&")
}

func (c *Client) categoriesURL() string {
	return c.endpoint("categories/key="+c.config.Key, "type=csv")
}

func (c *Client) groupsURL() string {
	return c.endpoint("datagroups/key="+c.config.Key, "mode=0", "type=csv")
}

func (c *Client) serieListURL(groupCode string) string {
	return c.endpoint("serieList/key="+c.config.Key, "type=csv", "code="+groupCode)
}

func (c *Client) seriesDataURL(codes []string, p requestParams) string {
	wire := make([]string, len(codes))
	for i, code := range codes {
		wire[i] = strings.ReplaceAll(code, "_", ".")
	}
	parts := []string{
		"series=" + strings.Join(wire, "-"),
		"startDate=" + p.startDate,
		"endDate=" + p.endDate,
		"type=csv",
		"key=" + c.config.Key,
	}
	if p.freq > 0 {
		parts = append(parts, "frequency="+strconv.Itoa(p.freq))
	}
	if p.agg != "" {
		parts = append(parts, "aggregationTypes="+p.agg)
	}
	return c.endpoint(parts...)
}

func (c *Client) groupDataURL(groupCode string, p requestParams) string {
	parts := []string{
		"datagroup=" + groupCode,
		"startDate=" + p.startDate,
		"endDate=" + p.endDate,
		"type=csv",
		"key=" + c.config.Key,
	}
	if p.freq > 0 {
		parts = append(parts, "frequency="+strconv.Itoa(p.freq))
	}
	return c.endpoint(parts...)
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(c.config.Key) == "" {
		return nil, ErrMissingKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	c.log.Debug("evds request", "url", url)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("evds: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *Client) fetchFrame(ctx context.Context, url string) (*frame.Frame, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	f, err := frame.ReadCSV(body)
	if err != nil {
		return nil, err
	}
	if len(f.Headers()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, url)
	}
	return f, nil
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
