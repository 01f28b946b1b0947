package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/pkg/metrics"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "heliowatt/1.0 (pv yield estimation service)"
)

// Client geocodes free-form addresses against a Nominatim search endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
}

// NewClient builds a geocoding client. Nominatim's usage policy requires an
// identifying User-Agent on every request.
func NewClient(baseURL, userAgent string) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	agent := strings.TrimSpace(userAgent)
	if agent == "" {
		agent = defaultUserAgent
	}
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", agent)
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     httpClient,
	}
}

// Search returns the candidate places for an address in Nominatim's ranking
// order. An empty slice means the address matched nothing.
func (c *Client) Search(ctx context.Context, address string) ([]location.Match, error) {
	start := time.Now()
	matches, err := c.search(ctx, address)
	metrics.RecordUpstreamRequest("nominatim", time.Since(start), err)
	return matches, err
}

func (c *Client) search(ctx context.Context, address string) ([]location.Match, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "json",
			"q":      address,
		}).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, &location.UpstreamStatusError{StatusCode: resp.StatusCode()}
	}

	var raw []wireMatch
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", location.ErrMalformedResponse, err)
	}
	return normalizeMatches(raw)
}

// wireMatch mirrors the Nominatim response shape, which carries coordinates
// as strings.
type wireMatch struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func normalizeMatches(raw []wireMatch) ([]location.Match, error) {
	matches := make([]location.Match, 0, len(raw))
	for _, entry := range raw {
		lat, err := strconv.ParseFloat(strings.TrimSpace(entry.Lat), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: latitude %q", location.ErrMalformedResponse, entry.Lat)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(entry.Lon), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: longitude %q", location.ErrMalformedResponse, entry.Lon)
		}
		matches = append(matches, location.Match{
			Latitude:    lat,
			Longitude:   lon,
			DisplayName: entry.DisplayName,
		})
	}
	return matches, nil
}

var _ location.GeocodeClient = (*Client)(nil)
