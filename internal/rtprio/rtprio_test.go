package rtprio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentReportsCallingThreadPolicy(t *testing.T) {
	policy, _, err := Current()
	require.NoError(t, err)
	require.Contains(t, []Policy{PolicyOther, PolicyFIFO, PolicyRR}, policy)
}

func TestSyncIsBestEffortAndNeverPanics(t *testing.T) {
	require.NotPanics(t, func() {
		Sync(PolicyFIFO, 50)
	})
}
