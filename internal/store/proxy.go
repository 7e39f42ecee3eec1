package store

import "time"

// Status is the proxy lifecycle state: pending validation, confirmed
// working, or confirmed failing.
type Status int16

const (
	StatusPending Status = 0
	StatusSuccess Status = 1
	StatusFailed  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Proxy is the single persistent entity of the pool.
type Proxy struct {
	ID           int64
	IP           string
	Port         int
	Protocol     string
	Country      *string
	Anonymity    *string
	Source       string
	Speed        *float64
	SuccessCount int
	FailCount    int
	Status       Status
	LastChecked  *time.Time
	LastSuccess  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Candidate is a newly-discovered proxy address awaiting ingestion.
type Candidate struct {
	IP       string
	Port     int
	Protocol string
	Country  *string
	Source   string
}

// Verdict is the outcome of one validation check for a stored proxy.
type Verdict struct {
	ID        int64
	Success   bool
	Speed     *float64
	Anonymity *string
}

// ActiveFilter narrows the ranked selection query used to list active
// proxies.
type ActiveFilter struct {
	Protocol  string
	Country   string
	Anonymity string
}

// CountryUpdate is one row of a batched country-assignment update.
type CountryUpdate struct {
	ID      int64
	Country string
}

// Stats is the aggregate projection served by GET /api/stats.
type Stats struct {
	Total              int
	Active             int
	Inactive           int
	Pending            int
	DistinctProtocols  int
	DistinctCountries  int
	AvgSpeed           float64
	ByAnonymity        map[string]int
}

// QualityScore computes a read-time derived ranking value: a weighted
// blend of success rate, speed, and recency of last success. It never
// drives the selection query itself.
func (p Proxy) QualityScore(weightSuccess, weightSpeed, weightStability float64) float64 {
	total := p.SuccessCount + p.FailCount
	var successScore float64
	if total > 0 {
		successScore = float64(p.SuccessCount) / float64(total) * 100
	}

	var speedScore float64
	if p.Speed != nil {
		speedScore = 100 - *p.Speed*10
		if speedScore < 0 {
			speedScore = 0
		}
	}

	var stabilityScore float64
	if p.LastSuccess != nil {
		hours := time.Since(*p.LastSuccess).Hours()
		stabilityScore = 100 - hours*5
		if stabilityScore < 0 {
			stabilityScore = 0
		}
	}

	return successScore*weightSuccess + speedScore*weightSpeed + stabilityScore*weightStability
}
