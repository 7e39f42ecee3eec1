package crawl

import (
	"context"

	"proxypool/internal/store"
)

// Adapter fetches proxy candidates from one external source. There is no
// shared base implementation; session handling and HTML/text parsing live
// with each concrete adapter.
type Adapter interface {
	// Name identifies the adapter in logs, metrics, and the source column.
	Name() string
	// Enabled reports whether the adapter should participate in a crawl run.
	Enabled() bool
	// FetchProxies returns the candidates this adapter found. An adapter
	// returning an error contributes zero candidates to the run; it never
	// stops its siblings.
	FetchProxies(ctx context.Context) ([]store.Candidate, error)
}
