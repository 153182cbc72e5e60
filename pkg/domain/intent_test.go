package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pinksync/pkg/domain-errors"
)

// TestParseIntent_ClosedEnumeration validates the boundary invariant: intents
// are a closed set, so free-form strings never leak past parsing.
func TestParseIntent_ClosedEnumeration(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIntent("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := ParseIntent("telepathy")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects case variants", func(t *testing.T) {
		_, err := ParseIntent("Visual_Only")
		require.Error(t, err)
	})

	t.Run("accepts every member of the taxonomy", func(t *testing.T) {
		for _, intent := range Intents() {
			parsed, err := ParseIntent(intent.String())
			require.NoError(t, err)
			assert.Equal(t, intent, parsed)
		}
	})
}

func TestComplianceLevel_Ordering(t *testing.T) {
	assert.True(t, LevelSilver.AtLeast(LevelBronze))
	assert.True(t, LevelGold.AtLeast(LevelSilver))
	assert.True(t, LevelPlatinum.AtLeast(LevelGold))
	assert.False(t, LevelBronze.AtLeast(LevelSilver))
	assert.True(t, LevelGold.AtLeast(LevelGold))
}

func TestParseSeverity(t *testing.T) {
	for _, s := range []string{"critical", "warning", "info"} {
		sev, err := ParseSeverity(s)
		require.NoError(t, err)
		assert.Equal(t, s, sev.String())
	}
	_, err := ParseSeverity("fatal")
	require.Error(t, err)
}
