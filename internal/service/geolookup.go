package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"proxypool/internal/store"
)

// GeoLookup resolves an IP address to an ISO 3166-1 alpha-2 country code.
// The lookup provider itself is out of scope; this interface exists only
// so the country-update task has something concrete to call.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (string, error)
}

// HTTPGeoLookup is a minimal collaborator hitting a free IP-geolocation
// endpoint. It is deliberately unambitious: no retries, no caching, no
// provider fallback — those would be a feature of the geolocation task
// itself, which is explicitly out of scope.
type HTTPGeoLookup struct {
	BaseURL string // e.g. "http://ip-api.com/json/%s?fields=countryCode"
	client  *http.Client
}

// NewHTTPGeoLookup builds a lookup client with the given timeout.
func NewHTTPGeoLookup(baseURL string, timeout time.Duration) *HTTPGeoLookup {
	return &HTTPGeoLookup{BaseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type geoResponse struct {
	CountryCode string `json:"countryCode"`
}

func (g *HTTPGeoLookup) Lookup(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf(g.BaseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo lookup for %s: status %d", ip, resp.StatusCode)
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.CountryCode == "" {
		return "", fmt.Errorf("geo lookup for %s: empty country code", ip)
	}
	return body.CountryCode, nil
}

// UpdateCountries resolves the country for up to limit proxies missing one,
// whatever their status, and writes the results back in a single batched statement,
// corresponding to update_country_task.
func (s *ProxyService) UpdateCountries(ctx context.Context, geo GeoLookup, limit int) error {
	proxies, err := s.GetProxiesWithoutCountry(ctx, limit)
	if err != nil {
		return fmt.Errorf("get proxies without country: %w", err)
	}
	if len(proxies) == 0 {
		return nil
	}

	updates := make([]store.CountryUpdate, 0, len(proxies))
	for _, p := range proxies {
		country, err := geo.Lookup(ctx, p.IP)
		if err != nil {
			continue
		}
		updates = append(updates, store.CountryUpdate{ID: p.ID, Country: country})
	}
	if len(updates) == 0 {
		return nil
	}

	return s.BatchUpdateCountries(ctx, updates)
}
