package maintenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_Allow(t *testing.T) {
	t.Run("Success_DisabledGateAllowsEveryone", func(t *testing.T) {
		gate := NewGate(false, "")

		assert.True(t, gate.Allow("anyone"))
		assert.True(t, gate.Allow(""))
	})

	t.Run("Success_AllowListMatchingIsCaseInsensitiveAndTrimmed", func(t *testing.T) {
		gate := NewGate(true, "alice, BOB")

		tests := []struct {
			username string
			want     bool
		}{
			{"alice", true},
			{"ALICE", true},
			{"  alice  ", true},
			{"bob", true},
			{"Bob", true},
			{"carol", false},
			{"", false},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.want, gate.Allow(tt.username), "username=%q", tt.username)
		}
	})

	t.Run("Success_EmptyAllowListDeniesAllWhenEnabled", func(t *testing.T) {
		gate := NewGate(true, "")

		assert.False(t, gate.Allow("alice"))
		assert.False(t, gate.Allow(""))
	})

	t.Run("Success_AllowListEntriesWithExtraCommas", func(t *testing.T) {
		gate := NewGate(true, ", alice,, bob ,")

		assert.True(t, gate.Allow("alice"))
		assert.True(t, gate.Allow("bob"))
		assert.False(t, gate.Allow("carol"))
	})
}

func TestGate_Enabled(t *testing.T) {
	assert.True(t, NewGate(true, "").Enabled())
	assert.False(t, NewGate(false, "").Enabled())
}
