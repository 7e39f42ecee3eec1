package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"proxypool/internal/metrics"
	"proxypool/internal/telemetry"
)

// PostgresRepository implements Repository over a pooled pgx connection.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository создаёт репозиторий поверх переданного подключения.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) instrument(ctx context.Context, op string) (context.Context, func()) {
	ctx, span := telemetry.StartSpan(ctx, "store."+op)
	start := time.Now()
	return ctx, func() {
		metrics.Get().RecordStoreOp(op, time.Since(start))
		span.End()
	}
}

func (r *PostgresRepository) UpsertCandidates(ctx context.Context, candidates []Candidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	ctx, done := r.instrument(ctx, "upsert_candidates")
	defer done()

	ips := make([]string, len(candidates))
	ports := make([]int32, len(candidates))
	protocols := make([]string, len(candidates))
	countries := make([]*string, len(candidates))
	sources := make([]string, len(candidates))

	for i, c := range candidates {
		ips[i] = c.IP
		ports[i] = int32(c.Port)
		protocols[i] = c.Protocol
		countries[i] = c.Country
		sources[i] = c.Source
	}

	const q = `
INSERT INTO proxies (ip, port, protocol, country, source, status)
SELECT ip, port, protocol, country, source, 0
FROM unnest($1::text[], $2::int[], $3::text[], $4::text[], $5::text[])
	AS t(ip, port, protocol, country, source)
ON CONFLICT (ip, port, protocol) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, ips, ports, protocols, countries, sources); err != nil {
		return 0, fmt.Errorf("upsert candidates: %w", err)
	}

	return len(candidates), nil
}

func (r *PostgresRepository) RecordVerdict(ctx context.Context, v Verdict) error {
	ctx, done := r.instrument(ctx, "record_verdict")
	defer done()

	const q = `
UPDATE proxies SET
	success_count = CASE WHEN $2 THEN success_count + 1 ELSE 0 END,
	fail_count    = CASE WHEN $2 THEN GREATEST(fail_count - 1, 0) ELSE fail_count + 1 END,
	status        = CASE WHEN $2 THEN 1 ELSE 2 END,
	last_checked  = now(),
	last_success  = CASE WHEN $2 THEN now() ELSE last_success END,
	speed         = CASE WHEN $2 THEN $3 ELSE speed END,
	anonymity     = CASE WHEN $2 THEN $4 ELSE anonymity END,
	updated_at    = now()
WHERE id = $1`

	_, err := r.db.Exec(ctx, q, v.ID, v.Success, v.Speed, v.Anonymity)
	if err != nil {
		return fmt.Errorf("record verdict: %w", err)
	}
	return nil
}

const selectColumns = `id, ip, port, protocol, country, anonymity, source, speed,
	success_count, fail_count, status, last_checked, last_success, created_at, updated_at`

func scanProxy(row pgx.Row) (Proxy, error) {
	var p Proxy
	err := row.Scan(&p.ID, &p.IP, &p.Port, &p.Protocol, &p.Country, &p.Anonymity, &p.Source,
		&p.Speed, &p.SuccessCount, &p.FailCount, &p.Status, &p.LastChecked, &p.LastSuccess,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanProxies(rows pgx.Rows) ([]Proxy, error) {
	defer rows.Close()
	var out []Proxy
	for rows.Next() {
		p, err := scanProxy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proxy row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) IterPending(ctx context.Context, limit, maxFail int) ([]Proxy, error) {
	ctx, done := r.instrument(ctx, "iter_pending")
	defer done()

	const q = `
SELECT ` + selectColumns + `
FROM proxies
WHERE fail_count < $1 AND status IN (0, 2)
ORDER BY last_checked ASC NULLS FIRST
LIMIT $2`

	rows, err := r.db.Query(ctx, q, maxFail, limit)
	if err != nil {
		return nil, fmt.Errorf("iter pending: %w", err)
	}
	return scanProxies(rows)
}

func (r *PostgresRepository) IterSuccessful(ctx context.Context, limit int) ([]Proxy, error) {
	ctx, done := r.instrument(ctx, "iter_successful")
	defer done()

	const q = `
SELECT ` + selectColumns + `
FROM proxies
WHERE status = 1
ORDER BY last_checked ASC NULLS FIRST
LIMIT $1`

	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("iter successful: %w", err)
	}
	return scanProxies(rows)
}

// maxActiveLimit caps the read API's selection query independent of the
// caller-supplied limit.
const maxActiveLimit = 20

func (r *PostgresRepository) IterActive(ctx context.Context, filter ActiveFilter, limit int) ([]Proxy, error) {
	ctx, done := r.instrument(ctx, "iter_active")
	defer done()

	if limit <= 0 || limit > maxActiveLimit {
		limit = maxActiveLimit
	}

	q := `
SELECT ` + selectColumns + `
FROM proxies
WHERE status = 1`
	args := []any{}
	argN := 1

	if filter.Protocol != "" {
		argN++
		q += fmt.Sprintf(" AND protocol = $%d", argN)
		args = append(args, filter.Protocol)
	}
	if filter.Country != "" {
		argN++
		q += fmt.Sprintf(" AND country = $%d", argN)
		args = append(args, filter.Country)
	}
	if filter.Anonymity != "" {
		argN++
		q += fmt.Sprintf(" AND anonymity = $%d", argN)
		args = append(args, filter.Anonymity)
	}

	q += " ORDER BY last_success DESC NULLS LAST, success_count DESC LIMIT $1"
	args = append([]any{limit}, args...)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("iter active: %w", err)
	}
	return scanProxies(rows)
}

func (r *PostgresRepository) CleanupFailed(ctx context.Context, maxFail int) (int64, error) {
	ctx, done := r.instrument(ctx, "cleanup_failed")
	defer done()

	const q = `DELETE FROM proxies WHERE status = 2 AND fail_count >= $1`
	tag, err := r.db.Exec(ctx, q, maxFail)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) CleanupStale(ctx context.Context, days int) (int64, error) {
	ctx, done := r.instrument(ctx, "cleanup_stale")
	defer done()

	const q = `
DELETE FROM proxies
WHERE (last_success IS NOT NULL AND last_success < now() - make_interval(days => $1))
   OR (last_success IS NULL AND created_at < now() - make_interval(days => $1))`

	tag, err := r.db.Exec(ctx, q, days)
	if err != nil {
		return 0, fmt.Errorf("cleanup stale: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) GetWithoutCountry(ctx context.Context, limit int) ([]Proxy, error) {
	ctx, done := r.instrument(ctx, "get_without_country")
	defer done()

	const q = `
SELECT ` + selectColumns + `
FROM proxies
WHERE country IS NULL
LIMIT $1`

	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("get without country: %w", err)
	}
	return scanProxies(rows)
}

func (r *PostgresRepository) BatchSetCountry(ctx context.Context, updates []CountryUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ctx, done := r.instrument(ctx, "batch_set_country")
	defer done()

	ids := make([]int64, len(updates))
	countries := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		countries[i] = u.Country
	}

	const q = `
UPDATE proxies AS p SET country = u.country, updated_at = now()
FROM unnest($1::bigint[], $2::text[]) AS u(id, country)
WHERE p.id = u.id`

	if _, err := r.db.Exec(ctx, q, ids, countries); err != nil {
		return fmt.Errorf("batch set country: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	ctx, done := r.instrument(ctx, "stats")
	defer done()

	const q = `
SELECT
	count(*),
	count(*) FILTER (WHERE status = 1),
	count(*) FILTER (WHERE status = 2),
	count(*) FILTER (WHERE status = 0),
	count(DISTINCT protocol),
	count(DISTINCT country) FILTER (WHERE country IS NOT NULL),
	coalesce(avg(speed) FILTER (WHERE speed IS NOT NULL), 0),
	count(*) FILTER (WHERE anonymity = 'transparent'),
	count(*) FILTER (WHERE anonymity = 'anonymous'),
	count(*) FILTER (WHERE anonymity = 'elite')
FROM proxies`

	var s Stats
	var transparent, anonymous, elite int
	err := r.db.QueryRow(ctx, q).Scan(
		&s.Total, &s.Active, &s.Inactive, &s.Pending,
		&s.DistinctProtocols, &s.DistinctCountries, &s.AvgSpeed,
		&transparent, &anonymous, &elite,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	s.ByAnonymity = map[string]int{
		"transparent": transparent,
		"anonymous":   anonymous,
		"elite":       elite,
	}
	return s, nil
}
