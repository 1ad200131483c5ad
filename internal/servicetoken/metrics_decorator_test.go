package servicetoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/idgate/internal/errors"
)

// recordingMetrics captures recorded operations for assertions.
type recordingMetrics struct {
	operations []string
	durations  []string
}

func (r *recordingMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	r.operations = append(r.operations, domain+"/"+operation+"/"+status)
}

func (r *recordingMetrics) RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string) {
	r.durations = append(r.durations, domain+"/"+operation+"/"+status)
}

func TestMetricsFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessStatus", func(t *testing.T) {
		recorder := &recordingMetrics{}
		fetcher := NewFetcherWithMetrics(&stubFetcher{}, recorder)

		token, err := fetcher.Fetch(ctx)
		require.NoError(t, err)
		require.NotNil(t, token)

		assert.Equal(t, []string{"servicetoken/fetch/success"}, recorder.operations)
		assert.Equal(t, []string{"servicetoken/fetch/success"}, recorder.durations)
	})

	t.Run("Error_RecordsErrorStatusAndPropagates", func(t *testing.T) {
		recorder := &recordingMetrics{}
		upstream := &stubFetcher{
			results: []fetchResult{{err: ErrUpstreamAuth}},
		}
		fetcher := NewFetcherWithMetrics(upstream, recorder)

		token, err := fetcher.Fetch(ctx)
		require.Error(t, err)
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, ErrUpstreamAuth))

		assert.Equal(t, []string{"servicetoken/fetch/error"}, recorder.operations)
	})
}
