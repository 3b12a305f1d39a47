package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMIDIOutBufferingOnlyCollectsDuringProcessWindow(t *testing.T) {
	a := New()

	require.False(t, a.BufferMIDIOut([]byte{1}), "buffering outside a process window must be rejected")

	a.BeginProcess()
	require.True(t, a.BufferMIDIOut([]byte{1, 2}))
	require.True(t, a.BufferMIDIOut([]byte{3}))

	out := a.EndProcess()
	require.Equal(t, [][]byte{{1, 2}, {3}}, out)

	require.False(t, a.BufferMIDIOut([]byte{9}), "window must be closed after EndProcess")
}

func TestMIDIOutBufferCopiesPayloads(t *testing.T) {
	a := New()
	a.BeginProcess()
	payload := []byte{1, 2, 3}
	a.BufferMIDIOut(payload)
	payload[0] = 99

	out := a.EndProcess()
	require.Equal(t, byte(1), out[0][0], "buffered payload must be an owned copy, unaffected by later mutation of the source slice")
}

func TestGUIQueueRunsEnqueuedClosureOnQueueGoroutine(t *testing.T) {
	q := NewGUIQueue()
	stop := make(chan struct{})
	go q.Run(stop)
	defer close(stop)

	future := q.Enqueue(func() (any, error) {
		return 42, nil
	})

	result, err := future.Wait()
	require.NoError(t, err)
	require.Equal(t, 42, result)
}

func TestGUIQueuePropagatesClosureError(t *testing.T) {
	q := NewGUIQueue()
	stop := make(chan struct{})
	go q.Run(stop)
	defer close(stop)

	sentinel := require.New(t)
	future := q.Enqueue(func() (any, error) {
		return nil, errBoom
	})
	_, err := future.Wait()
	sentinel.ErrorIs(err, errBoom)
}

func TestRecursionGuardTracksDepthPerToken(t *testing.T) {
	g := NewRecursionGuard()

	leave1, d1, err := g.Enter(HostThreadToken(1))
	require.NoError(t, err)
	require.Equal(t, 1, d1)

	leave2, d2, err := g.Enter(HostThreadToken(1))
	require.NoError(t, err)
	require.Equal(t, 2, d2, "nested call on the same token increments depth")

	_, d3, err := g.Enter(HostThreadToken(2))
	require.NoError(t, err)
	require.Equal(t, 1, d3, "a different token starts its own depth count")

	leave2()
	leave1()
}

func TestRecursionGuardRejectsRunawayDepth(t *testing.T) {
	g := NewRecursionGuard()
	token := HostThreadToken(5)
	for i := 0; i < MaxDepth; i++ {
		_, _, err := g.Enter(token)
		require.NoError(t, err)
	}
	_, _, err := g.Enter(token)
	require.Error(t, err)
}

func TestAudioThreadAssertionCompletesOnAnotherGoroutine(t *testing.T) {
	a := New()
	a.SetMainThread()
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.MarkAudioThread()
		a.AssertAudioThread("process")
		a.UnmarkAudioThread()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("audio-thread assertion goroutine did not complete")
	}
}

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
