package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// HitTest is pure geometry and needs no X11 connection; the rest of
// Embedder's methods require a live display and are exercised by the
// worker process's integration tests instead (spec.md's editor embedder
// has no in-process fake X server in this pack to test against).
func TestHitTestRejectsPointsOutsideVisibleRegion(t *testing.T) {
	e := &Embedder{}

	require.True(t, e.HitTest(0, 0, 800, 600))
	require.True(t, e.HitTest(799, 599, 800, 600))
	require.False(t, e.HitTest(800, 0, 800, 600))
	require.False(t, e.HitTest(0, 600, 800, 600))
	require.False(t, e.HitTest(-1, 0, 800, 600))
}

func TestOpenOnAlreadyOpenEmbedderReturnsError(t *testing.T) {
	e := &Embedder{open: true}
	err := e.Open(0, 0)
	require.ErrorIs(t, err, errAlreadyOpen)
}

func TestResizeOnUnopenedEmbedderReturnsError(t *testing.T) {
	e := &Embedder{}
	err := e.Resize(640, 480)
	require.ErrorIs(t, err, errNotOpen)
}
