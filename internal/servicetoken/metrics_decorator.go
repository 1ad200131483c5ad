package servicetoken

import (
	"context"
	"time"

	"github.com/allisson/idgate/internal/metrics"
)

// metricsFetcher wraps a Fetcher with business metrics recording.
type metricsFetcher struct {
	fetcher Fetcher
	metrics metrics.BusinessMetrics
}

// NewFetcherWithMetrics wraps the fetcher to record every upstream token
// fetch, so cache hit ratios can be derived from fetch counts.
func NewFetcherWithMetrics(fetcher Fetcher, m metrics.BusinessMetrics) Fetcher {
	return &metricsFetcher{
		fetcher: fetcher,
		metrics: m,
	}
}

func (f *metricsFetcher) Fetch(ctx context.Context) (*Token, error) {
	start := time.Now()

	token, err := f.fetcher.Fetch(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "servicetoken", "fetch", status)
	f.metrics.RecordDuration(ctx, "servicetoken", "fetch", time.Since(start), status)

	return token, err
}
