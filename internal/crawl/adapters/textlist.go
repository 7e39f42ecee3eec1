package adapters

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"proxypool/internal/store"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// TextListSource is one raw "ip:port per line" list for a fixed protocol,
// grounded on GithubSpider's data_map (one URL per protocol per mirror).
type TextListSource struct {
	URL      string
	Protocol string
}

// TextListAdapter fetches one or more plain-text "ip:port" lists and tags
// every line with the source's configured protocol.
type TextListAdapter struct {
	name    string
	sources []TextListSource
	enabled bool
	client  *http.Client
}

// NewTextListAdapter builds an adapter over the given raw-list sources.
func NewTextListAdapter(name string, sources []TextListSource) *TextListAdapter {
	return &TextListAdapter{
		name:    name,
		sources: sources,
		enabled: true,
		client:  &http.Client{Timeout: defaultFetchTimeout},
	}
}

func (a *TextListAdapter) Name() string   { return a.name }
func (a *TextListAdapter) Enabled() bool  { return a.enabled }
func (a *TextListAdapter) SetEnabled(v bool) { a.enabled = v }

func (a *TextListAdapter) FetchProxies(ctx context.Context) ([]store.Candidate, error) {
	var out []store.Candidate

	for _, src := range a.sources {
		candidates, err := a.fetchOne(ctx, src)
		if err != nil {
			return out, fmt.Errorf("%s: %s: %w", a.name, src.URL, err)
		}
		out = append(out, candidates...)
	}
	return out, nil
}

func (a *TextListAdapter) fetchOne(ctx context.Context, src TextListSource) ([]store.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out []store.Candidate
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, ":") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		ip := strings.TrimSpace(parts[0])
		port, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || ip == "" {
			continue
		}
		if !validCandidate(a.name, ip, port, src.Protocol) {
			continue
		}

		out = append(out, store.Candidate{
			IP:       ip,
			Port:     port,
			Protocol: src.Protocol,
			Source:   a.name,
		})
	}
	return out, scanner.Err()
}
