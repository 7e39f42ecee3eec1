package store

import "context"

// Repository is the store's public contract. Every method is a single
// round-trip statement; no long-held transactions, so independent workers
// can re-enter freely and rely on the uniqueness constraint as the only
// serialization point.
type Repository interface {
	// UpsertCandidates inserts new PENDING rows for candidates not already
	// present by (ip, port, protocol); conflicts are silent no-ops. Returns
	// the number of candidates attempted, not necessarily inserted.
	UpsertCandidates(ctx context.Context, candidates []Candidate) (int, error)

	// RecordVerdict applies the proxy state-transition rules in one atomic
	// statement. Idempotent re-application with the same inputs yields the
	// same row state except for UpdatedAt.
	RecordVerdict(ctx context.Context, verdict Verdict) error

	// IterPending returns up to limit rows eligible for (re)validation,
	// least recently checked first (never-checked rows first).
	IterPending(ctx context.Context, limit, maxFail int) ([]Proxy, error)

	// IterSuccessful returns up to limit SUCCESS rows for re-validation,
	// oldest-checked first.
	IterSuccessful(ctx context.Context, limit int) ([]Proxy, error)

	// IterActive returns the ranked selection serving the read API.
	IterActive(ctx context.Context, filter ActiveFilter, limit int) ([]Proxy, error)

	// CleanupFailed deletes FAILED rows at or past the failure ceiling.
	CleanupFailed(ctx context.Context, maxFail int) (int64, error)

	// CleanupStale deletes rows last successful (or, absent that, created)
	// more than days ago.
	CleanupStale(ctx context.Context, days int) (int64, error)

	// GetWithoutCountry returns up to limit rows with a null country.
	GetWithoutCountry(ctx context.Context, limit int) ([]Proxy, error)

	// BatchSetCountry applies many country assignments in one statement.
	BatchSetCountry(ctx context.Context, updates []CountryUpdate) error

	// Stats returns the pool-wide aggregate counts for GET /api/stats.
	Stats(ctx context.Context) (Stats, error)
}
