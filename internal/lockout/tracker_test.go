package lockout

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTracker_Failures(t *testing.T) {
	t.Run("Success_FourFailuresLeaveIdentityUnblocked", func(t *testing.T) {
		tracker := NewTracker(5, 30*time.Minute, testLogger())

		for i := 0; i < 4; i++ {
			tracker.RecordFailure("alice")
		}

		assert.False(t, tracker.IsBlocked("alice"))
	})

	t.Run("Success_FifthFailureBlocksIdentity", func(t *testing.T) {
		tracker := NewTracker(5, 30*time.Minute, testLogger())

		for i := 0; i < 5; i++ {
			tracker.RecordFailure("alice")
		}

		assert.True(t, tracker.IsBlocked("alice"))
	})

	t.Run("Success_SuccessBeforeBlockingResetsCount", func(t *testing.T) {
		tracker := NewTracker(5, 30*time.Minute, testLogger())

		for i := 0; i < 4; i++ {
			tracker.RecordFailure("alice")
		}
		tracker.RecordSuccess("alice")

		// The run restarts from zero after a success.
		for i := 0; i < 4; i++ {
			tracker.RecordFailure("alice")
		}
		assert.False(t, tracker.IsBlocked("alice"))

		tracker.RecordFailure("alice")
		assert.True(t, tracker.IsBlocked("alice"))
	})

	t.Run("Success_BlockedIsTerminal", func(t *testing.T) {
		tracker := NewTracker(2, 30*time.Minute, testLogger())

		tracker.RecordFailure("alice")
		tracker.RecordFailure("alice")
		require.True(t, tracker.IsBlocked("alice"))

		// Neither success nor further failures change the blocked state.
		tracker.RecordSuccess("alice")
		assert.True(t, tracker.IsBlocked("alice"))

		tracker.RecordFailure("alice")
		assert.True(t, tracker.IsBlocked("alice"))
	})

	t.Run("Success_WindowRolloverResetsCount", func(t *testing.T) {
		tracker := NewTracker(3, 10*time.Minute, testLogger())

		base := time.Now()
		tracker.now = func() time.Time { return base }

		tracker.RecordFailure("alice")
		tracker.RecordFailure("alice")

		// Two more failures in a fresh window are not enough to block.
		tracker.now = func() time.Time { return base.Add(11 * time.Minute) }
		tracker.RecordFailure("alice")
		tracker.RecordFailure("alice")
		assert.False(t, tracker.IsBlocked("alice"))

		tracker.RecordFailure("alice")
		assert.True(t, tracker.IsBlocked("alice"))
	})

	t.Run("Success_IdentitiesAreIndependent", func(t *testing.T) {
		tracker := NewTracker(2, 30*time.Minute, testLogger())

		tracker.RecordFailure("alice")
		tracker.RecordFailure("alice")
		tracker.RecordFailure("bob")

		assert.True(t, tracker.IsBlocked("alice"))
		assert.False(t, tracker.IsBlocked("bob"))
	})

	t.Run("Success_UnseenIdentityIsClear", func(t *testing.T) {
		tracker := NewTracker(5, 30*time.Minute, testLogger())

		assert.False(t, tracker.IsBlocked("never-seen"))
		tracker.RecordSuccess("never-seen")
		assert.False(t, tracker.IsBlocked("never-seen"))
	})
}

func TestTracker_Concurrency(t *testing.T) {
	t.Run("Success_ConcurrentFailuresAreNotLost", func(t *testing.T) {
		const workers = 10
		const failuresPerWorker = 10

		tracker := NewTracker(workers*failuresPerWorker, time.Hour, testLogger())

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < failuresPerWorker; j++ {
					tracker.RecordFailure("alice")
				}
			}()
		}
		wg.Wait()

		// Exactly threshold failures were applied, so the identity is blocked.
		assert.True(t, tracker.IsBlocked("alice"))
	})
}

func TestTracker_EventBus(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Success_ConsumesPublishedOutcomes", func(t *testing.T) {
		tracker := NewTracker(2, 30*time.Minute, testLogger())
		bus := EventBus.New()

		require.NoError(t, tracker.Subscribe(bus))

		bus.Publish(TopicAuthOutcome, Outcome{Identity: "alice", Success: false})
		bus.Publish(TopicAuthOutcome, Outcome{Identity: "alice", Success: false})
		bus.WaitAsync()

		assert.True(t, tracker.IsBlocked("alice"))

		require.NoError(t, tracker.Unsubscribe(bus))
	})

	t.Run("Success_EmptyIdentityTakesNoAction", func(t *testing.T) {
		tracker := NewTracker(1, 30*time.Minute, testLogger())
		bus := EventBus.New()

		require.NoError(t, tracker.Subscribe(bus))

		bus.Publish(TopicAuthOutcome, Outcome{Identity: "", Success: false})
		bus.WaitAsync()

		assert.False(t, tracker.IsBlocked(""))

		require.NoError(t, tracker.Unsubscribe(bus))
	})

	t.Run("Success_SuccessEventResetsFailures", func(t *testing.T) {
		tracker := NewTracker(2, 30*time.Minute, testLogger())
		bus := EventBus.New()

		require.NoError(t, tracker.Subscribe(bus))

		bus.Publish(TopicAuthOutcome, Outcome{Identity: "alice", Success: false})
		bus.WaitAsync()
		bus.Publish(TopicAuthOutcome, Outcome{Identity: "alice", Success: true})
		bus.WaitAsync()
		bus.Publish(TopicAuthOutcome, Outcome{Identity: "alice", Success: false})
		bus.WaitAsync()

		assert.False(t, tracker.IsBlocked("alice"))

		require.NoError(t, tracker.Unsubscribe(bus))
	})
}
