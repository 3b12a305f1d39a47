package hostproc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyRendezvousNameIsStableForSameTriple(t *testing.T) {
	k := Key{GroupName: "reaper", ABI: "vst3", WorkerUser: "alice"}
	require.Equal(t, k.RendezvousName(), k.RendezvousName())
	require.NotEqual(t, k.RendezvousName(), Key{GroupName: "reaper", ABI: "clap", WorkerUser: "alice"}.RendezvousName())
}

func TestAliveReflectsProcessLifetime(t *testing.T) {
	require.True(t, alive(os.Getpid()), "the calling process must observe itself as alive")
}

func TestAliveReturnsFalseForImpossiblePID(t *testing.T) {
	require.False(t, alive(1<<30), "a PID far beyond any real process must be reported dead")
}

func TestWatchdogDoesNotFireWhileOwnProcessIsAlive(t *testing.T) {
	w := NewWatchdog(os.Getpid(), 20*time.Millisecond)
	fired := make(chan struct{})
	w.Start(func() { close(fired) })
	defer w.Stop()

	select {
	case <-fired:
		t.Fatal("watchdog must not fire onDead while the peer PID is alive")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProcessSpawnAndWait(t *testing.T) {
	p, err := Spawn(context.Background(), SpawnConfig{
		WorkerPath:  "/bin/true",
		PluginPath:  "dummy.so",
		InstanceDir: t.TempDir(),
	})
	if err != nil {
		t.Skipf("environment cannot spawn /bin/true: %v", err)
	}
	code, err := p.Wait()
	require.NoError(t, err)
	require.Equal(t, 0, code)
}
