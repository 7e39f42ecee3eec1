package validator

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"proxypool/internal/config"
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
	"proxypool/internal/store"
	"proxypool/internal/telemetry"
)

// Result is one proxy's validation outcome.
type Result struct {
	ID        int64
	Success   bool
	Speed     *float64
	Anonymity *string
}

// BatchResult is validate_batch's return value.
type BatchResult struct {
	Total   int
	Success int
	Failed  int
	Results []Result
}

// echoResponse is the body shape of a header-echo control URL (e.g.
// httpbin's /get), used in place of observed response headers when the
// configured control URL is of that shape.
type echoResponse struct {
	Headers map[string]string `json:"headers"`
	Origin  string            `json:"origin"`
}

// Validator performs bounded-concurrency connectivity checks against a
// control URL: a dedicated semaphore-style worker pool per batch, one HTTP
// round trip per proxy, anonymity classification from the response, and a
// failure taxonomy that never lets one proxy's error cancel its siblings.
type Validator struct {
	cfg             config.ValidatorConfig
	newClient       func(store.Proxy, time.Duration) (*http.Client, error)
	isEchoControlURL func(string) bool
}

// New constructs a Validator from the validator section of the running
// configuration.
func New(cfg config.ValidatorConfig) *Validator {
	return &Validator{
		cfg:       cfg,
		newClient: newProxyClient,
		isEchoControlURL: func(u string) bool {
			return strings.Contains(u, "httpbin.org/get") || strings.Contains(u, "/headers")
		},
	}
}

// controlURLFor returns the per-proxy control URL, honoring the CN-specific
// override.
func (v *Validator) controlURLFor(p store.Proxy) string {
	if p.Country != nil && strings.EqualFold(*p.Country, "CN") && v.cfg.TestURLCN != "" {
		return v.cfg.TestURLCN
	}
	return v.cfg.TestURL
}

// ValidateBatch checks every proxy in proxies concurrently, bounded by
// MaxConcurrentValidators, and returns one Result per input proxy. It never
// writes to the store; the caller is responsible for persisting verdicts.
func (v *Validator) ValidateBatch(ctx context.Context, proxies []store.Proxy, taskName string) BatchResult {
	if len(proxies) == 0 {
		return BatchResult{}
	}

	ctx, span := telemetry.StartSpan(ctx, "validator.validate_batch")
	defer span.End()

	workers := v.cfg.MaxConcurrentValidators
	if workers <= 0 {
		workers = 1
	}
	if workers > len(proxies) {
		workers = len(proxies)
	}

	tasks := make(chan store.Proxy, len(proxies))
	for _, p := range proxies {
		tasks <- p
	}
	close(tasks)

	resultsCh := make(chan Result, len(proxies))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range tasks {
				resultsCh <- v.validateOne(ctx, p, taskName)
			}
		}()
	}

	wg.Wait()
	close(resultsCh)

	batch := BatchResult{Total: len(proxies), Results: make([]Result, 0, len(proxies))}
	for r := range resultsCh {
		batch.Results = append(batch.Results, r)
		if r.Success {
			batch.Success++
		} else {
			batch.Failed++
		}
	}
	span.SetAttributes(telemetry.ValidationBatchAttributes(batch.Total, batch.Success, batch.Failed)...)
	return batch
}

func (v *Validator) validateOne(ctx context.Context, p store.Proxy, taskName string) Result {
	start := time.Now()
	result, ok := v.tryValidate(ctx, p)
	metrics.Get().RecordValidation(ok, time.Since(start))

	eventName := "proxy.validated"
	if !ok {
		eventName = "proxy.validation_failed"
	}
	telemetry.AddEvent(ctx, eventName, telemetry.ProxyAttributes(p.ID, p.Protocol)...)

	if ok {
		logger.Log.Debug("proxy validated", "task", taskName, "ip", p.IP, "port", p.Port,
			"speed", result.Speed, "anonymity", result.Anonymity)
	} else {
		logger.Log.Debug("proxy validation failed", "task", taskName, "ip", p.IP, "port", p.Port)
	}
	return result
}

// tryValidate performs the single round trip. Any error anywhere in the
// chain, dial, TLS, timeout, non-2xx status, collapses to a failure
// result; it never propagates to the caller so one bad proxy cannot cancel
// the batch.
func (v *Validator) tryValidate(ctx context.Context, p store.Proxy) (Result, bool) {
	fail := Result{ID: p.ID, Success: false}

	client, err := v.newClient(p, v.cfg.Timeout)
	if err != nil {
		return fail, false
	}

	controlURL := v.controlURLFor(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, controlURL, nil)
	if err != nil {
		return fail, false
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fail, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail, false
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100

	headers, origin := v.observedHeaders(resp, p.IP)
	anonymity := classifyAnonymity(headers, origin)

	return Result{ID: p.ID, Success: true, Speed: &elapsed, Anonymity: &anonymity}, true
}

// observedHeaders returns the header set the anonymity classifier should
// inspect, and the proxy IP it should look for within them. For a
// header-echo control URL it is the echoed body's view of what the origin
// server actually saw; otherwise it is the raw response headers.
func (v *Validator) observedHeaders(resp *http.Response, proxyIP string) (map[string]string, string) {
	if v.isEchoControlURL(resp.Request.URL.String()) {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err == nil {
			var echo echoResponse
			if jsonErr := json.Unmarshal(body, &echo); jsonErr == nil {
				origin := echo.Origin
				if origin == "" {
					origin = proxyIP
				}
				return echo.Headers, origin
			}
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[k] = vals[0]
		}
	}
	return headers, proxyIP
}
