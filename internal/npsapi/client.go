// Package npsapi is a client for the National Park Service developer API,
// used by the fetch-parks job to populate the park catalog and boundary
// geometry.
package npsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/geojson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the NPS developer API root.
	DefaultBaseURL = "https://developer.nps.gov/api/v1"

	// PageMax is the maximum number of parks per page.
	PageMax = 200
)

// ErrMissingAPIKey is returned when NPS_API_KEY is not set.
var ErrMissingAPIKey = errors.New("NPS_API_KEY environment variable is required")

// Config holds NPS API client configuration.
type Config struct {
	APIKey  string
	BaseURL string
}

// LoadFromEnv loads client configuration from environment variables.
//
// Environment variables:
//   - NPS_API_KEY: API key from developer.nps.gov (required)
//   - NPS_API_ENDPOINT: API root override (default: https://developer.nps.gov/api/v1)
func LoadFromEnv() Config {
	base := strings.TrimSpace(os.Getenv("NPS_API_ENDPOINT"))
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("NPS_API_KEY"),
		BaseURL: base,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Client is an HTTP client for the NPS API. Requests are rate limited so the
// per-park boundary fetches stay under the API's hourly quota.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 2 req/s with a small burst keeps a full catalog walk well under
		// the 1000/hour developer quota.
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}, nil
}

// ParkRecord is the simplified park row extracted from the catalog.
type ParkRecord struct {
	ParkCode    string
	ParkName    string
	State       string
	Designation string
	Latitude    *float64
	Longitude   *float64
	Description *string
	Website     *string
}

type parksPage struct {
	Total string `json:"total"`
	Data  []struct {
		ParkCode    string `json:"parkCode"`
		FullName    string `json:"fullName"`
		States      string `json:"states"`
		Designation string `json:"designation"`
		Latitude    string `json:"latitude"`
		Longitude   string `json:"longitude"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"data"`
}

// FetchParks pages through the full park catalog.
func (c *Client) FetchParks(ctx context.Context) ([]ParkRecord, error) {
	var all []ParkRecord
	start := 0

	for {
		params := url.Values{}
		params.Set("api_key", c.cfg.APIKey)
		params.Set("limit", strconv.Itoa(PageMax))
		params.Set("start", strconv.Itoa(start))

		var page parksPage
		if err := c.getJSON(ctx, c.cfg.BaseURL+"/parks", params, &page); err != nil {
			return nil, fmt.Errorf("fetch parks page at %d: %w", start, err)
		}

		for _, p := range page.Data {
			code := strings.ToUpper(strings.TrimSpace(p.ParkCode))
			if code == "" {
				continue
			}
			rec := ParkRecord{
				ParkCode:    code,
				ParkName:    p.FullName,
				State:       p.States,
				Designation: p.Designation,
				Latitude:    parseCoord(p.Latitude),
				Longitude:   parseCoord(p.Longitude),
			}
			if p.Description != "" {
				d := p.Description
				rec.Description = &d
			}
			if p.URL != "" {
				u := p.URL
				rec.Website = &u
			}
			all = append(all, rec)
		}

		log.Printf("[npsapi] fetched %d parks (total so far %d)", len(page.Data), len(all))

		if len(page.Data) < PageMax {
			return all, nil
		}
		start += len(page.Data)
	}
}

// FetchBoundary fetches the boundary GeoJSON for one park. The payload is
// parsed before it is accepted: a boundary the map layer can't render is
// worse than no boundary. Returns "" (and no error) when the park has no
// boundary on record.
func (c *Client) FetchBoundary(ctx context.Context, parkCode string) (string, error) {
	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)

	endpoint := c.cfg.BaseURL + "/mapdata/parkboundaries/" + url.PathEscape(strings.ToLower(parkCode))

	body, status, err := c.get(ctx, endpoint, params)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", nil
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("boundary for %s: status %d", parkCode, status)
	}

	if _, err := geojson.Parse(string(body), geojson.DefaultParseOptions); err != nil {
		return "", fmt.Errorf("boundary for %s: invalid GeoJSON: %w", parkCode, err)
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dst any) error {
	body, status, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d", status)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("nps request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
