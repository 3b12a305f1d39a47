package transport

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tempSocketDir(t *testing.T) string {
	t.Helper()
	dir := fmt.Sprintf("/tmp/plugbridge-transport-test-%d", rand.Int63())
	require.NoError(t, os.MkdirAll(dir, 0700))
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestListenDialEstablishesAllSixSockets(t *testing.T) {
	dir := tempSocketDir(t)

	var native *Set
	var nativeErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		native, nativeErr = Listen(context.Background(), dir)
	}()

	// Give Listen a moment to bind all six listeners before dialing.
	time.Sleep(50 * time.Millisecond)

	worker, err := Dial(dir)
	require.NoError(t, err)
	defer worker.CloseAll()

	<-done
	require.NoError(t, nativeErr)
	defer native.CloseAll()

	for _, role := range socketOrder {
		require.NotNil(t, native.Get(role), "native side missing %s", role)
		require.NotNil(t, worker.Get(role), "worker side missing %s", role)
	}

	_, err = os.Stat(socketPath(dir, Control))
	require.True(t, os.IsNotExist(err), "socket path must be unlinked once all connections are established")
}

func TestConnWriteFrameSerializesConcurrentWriters(t *testing.T) {
	dir := tempSocketDir(t)

	nativeCh := make(chan *Set, 1)
	go func() {
		native, err := Listen(context.Background(), dir)
		require.NoError(t, err)
		nativeCh <- native
	}()
	time.Sleep(50 * time.Millisecond)

	worker, err := Dial(dir)
	require.NoError(t, err)
	native := <-nativeCh
	defer native.CloseAll()
	defer worker.CloseAll()

	conn := worker.Get(Control)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, conn.WriteFrame([]byte{byte(i)}))
		}(i)
	}
	wg.Wait()

	reader := native.Get(Control)
	seen := make(map[byte]bool)
	for i := 0; i < 16; i++ {
		frame, err := reader.ReadFrame()
		require.NoError(t, err)
		require.Len(t, frame, 1)
		seen[frame[0]] = true
	}
	require.Len(t, seen, 16, "every writer's frame must arrive intact, never merged or truncated")
}

func TestSocketStringNames(t *testing.T) {
	require.Equal(t, "main-dispatch", MainDispatch.String())
	require.Equal(t, "control", Control.String())
}
