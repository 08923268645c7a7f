// Package geocode resolves addresses and coordinates against a Nominatim
// compatible API. Every failure reads as "not found".
package geocode

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "catchlog-backend/1.0"
	defaultTimeout   = 8 * time.Second
)

// Place is the result of a forward lookup.
type Place struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

// Address is the result of a reverse lookup.
type Address struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient throttles outbound requests to perSecond (Nominatim's usage
// policy allows one per second).
func NewClient(baseURL string, perSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Forward returns the best match for query, or nil.
func (c *Client) Forward(ctx context.Context, query string) *Place {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if !c.get(ctx, "/search", q, &results) || len(results) == 0 {
		return nil
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		log.Printf("geocode: unparsable coordinates %q,%q", results[0].Lat, results[0].Lon)
		return nil
	}
	return &Place{Lat: lat, Lng: lng, DisplayName: results[0].DisplayName}
}

// Reverse returns the address at (lat, lng), or nil.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) *Address {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")

	var result struct {
		DisplayName string            `json:"display_name"`
		Address     map[string]string `json:"address"`
		Error       string            `json:"error"`
	}
	if !c.get(ctx, "/reverse", q, &result) || result.Error != "" || result.DisplayName == "" {
		return nil
	}
	return &Address{DisplayName: result.DisplayName, Address: result.Address}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest interface{}) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		log.Printf("geocode: build request: %v", err)
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("geocode: %s failed: %v", path, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("geocode: %s returned %d", path, resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		log.Printf("geocode: decode %s: %v", path, err)
		return false
	}
	return true
}
