package workerside

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/wire"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
)

func TestParseArgsAcceptsThreeOrFourArguments(t *testing.T) {
	a, err := ParseArgs([]string{"/plugins/thing.so", "/tmp/inst-1", "4242"})
	require.NoError(t, err)
	require.Equal(t, "/plugins/thing.so", a.PluginLibraryPath)
	require.Equal(t, "/tmp/inst-1", a.InstanceSocketDir)
	require.Equal(t, 4242, a.ParentPID)
	require.Empty(t, a.PluginType)

	a, err = ParseArgs([]string{"/plugins/thing.so", "/tmp/inst-1", "4242", "clap"})
	require.NoError(t, err)
	require.Equal(t, "clap", a.PluginType)
}

func TestParseArgsRejectsTooFewArguments(t *testing.T) {
	_, err := ParseArgs([]string{"/plugins/thing.so"})
	require.Error(t, err)
}

func TestServeDispatchesOneFrameRoundTrip(t *testing.T) {
	dir := t.TempDir()

	var serverSet *transport.Set
	ready := make(chan struct{})
	go func() {
		set, err := transport.Listen(context.Background(), dir)
		require.NoError(t, err)
		serverSet = set
		close(ready)
	}()
	time.Sleep(50 * time.Millisecond)

	clientSet, err := transport.Dial(dir)
	require.NoError(t, err)
	<-ready

	w := &Worker{sockets: serverSet, log: zerolog.Nop()}

	dispatcher := message.NewDispatcher()
	dispatcher.Register(vst2.EffGetVendorString, func(req *message.DispatchRequest) (*message.DispatchResponse, error) {
		return &message.DispatchResponse{ReturnValue: 1}, nil
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- w.Serve(context.Background(), transport.MainDispatch, dispatcher) }()

	req := &message.DispatchRequest{Opcode: vst2.EffGetVendorString}
	enc := wire.NewEncoder(64)
	req.Encode(enc)
	clientConn := clientSet.Get(transport.MainDispatch)
	require.NoError(t, clientConn.WriteFrame(enc.Bytes()))

	payload, err := clientConn.ReadFrame()
	require.NoError(t, err)
	dec := wire.NewDecoder(payload)
	resp, err := message.DecodeDispatchResponse(dec)
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.ReturnValue)

	_ = os.Getpid()
}
