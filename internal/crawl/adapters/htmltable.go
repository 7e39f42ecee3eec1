package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"proxypool/internal/store"
)

const defaultFetchTimeout = 20 * time.Second

// HTMLTableAdapter scrapes an "ip, port, [protocol]" table from an HTML
// page, grounded on FreeProxyListSpider and GetFreeProxySpider: both walk
// `tbody tr` rows and read fixed-position `td` cells.
type HTMLTableAdapter struct {
	name        string
	urls        []string
	ipCol       int
	portCol     int
	protocolCol int      // -1 when protocol is fixed rather than a column
	protocol    string   // used when protocolCol < 0
	httpsCol    int      // -1 when unused; column whose "yes"/"no" text picks http vs https
	enabled     bool
	client      *http.Client
}

// HTMLTableConfig configures one HTMLTableAdapter instance.
type HTMLTableConfig struct {
	Name        string
	URLs        []string
	IPCol       int
	PortCol     int
	ProtocolCol int
	Protocol    string
	HTTPSCol    int
}

// NewHTMLTableAdapter builds an adapter from cfg.
func NewHTMLTableAdapter(cfg HTMLTableConfig) *HTMLTableAdapter {
	if cfg.ProtocolCol == 0 {
		cfg.ProtocolCol = -1
	}
	if cfg.HTTPSCol == 0 {
		cfg.HTTPSCol = -1
	}
	return &HTMLTableAdapter{
		name:        cfg.Name,
		urls:        cfg.URLs,
		ipCol:       cfg.IPCol,
		portCol:     cfg.PortCol,
		protocolCol: cfg.ProtocolCol,
		protocol:    cfg.Protocol,
		httpsCol:    cfg.HTTPSCol,
		enabled:     true,
		client:      &http.Client{Timeout: defaultFetchTimeout},
	}
}

func (a *HTMLTableAdapter) Name() string      { return a.name }
func (a *HTMLTableAdapter) Enabled() bool     { return a.enabled }
func (a *HTMLTableAdapter) SetEnabled(v bool) { a.enabled = v }

func (a *HTMLTableAdapter) FetchProxies(ctx context.Context) ([]store.Candidate, error) {
	var out []store.Candidate

	for _, u := range a.urls {
		rows, err := a.fetchRows(ctx, u)
		if err != nil {
			return out, fmt.Errorf("%s: %s: %w", a.name, u, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (a *HTMLTableAdapter) fetchRows(ctx context.Context, url string) ([]store.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []store.Candidate
	for _, tr := range findAll(doc, "tr") {
		cells := cellTexts(tr)
		if len(cells) <= max(a.ipCol, a.portCol) {
			continue
		}

		ip := strings.TrimSpace(cells[a.ipCol])
		port, err := strconv.Atoi(strings.TrimSpace(cells[a.portCol]))
		if err != nil || ip == "" {
			continue
		}

		protocol := a.protocol
		if a.protocolCol >= 0 && len(cells) > a.protocolCol {
			protocol = strings.ToLower(strings.TrimSpace(cells[a.protocolCol]))
		} else if a.httpsCol >= 0 && len(cells) > a.httpsCol {
			protocol = "http"
			if strings.EqualFold(strings.TrimSpace(cells[a.httpsCol]), "yes") {
				protocol = "https"
			}
		}
		if protocol == "" {
			continue
		}
		if !validCandidate(a.name, ip, port, protocol) {
			continue
		}

		out = append(out, store.Candidate{
			IP:       ip,
			Port:     port,
			Protocol: protocol,
			Source:   a.name,
		})
	}
	return out, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// findAll walks the parsed document collecting every element node whose tag
// matches name.
func findAll(n *html.Node, name string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == name {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// cellTexts returns the trimmed text content of every td child of row, in
// document order.
func cellTexts(row *html.Node) []string {
	var out []string
	for _, td := range findAll(row, "td") {
		out = append(out, strings.TrimSpace(textContent(td)))
	}
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
