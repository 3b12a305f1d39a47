package nativeside

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/wire"
)

func TestDispatchOnUnconnectedSocketReturnsError(t *testing.T) {
	in := &Instance{sockets: &transport.Set{}, enc: wire.NewEncoder(64)}
	_, err := in.Dispatch(transport.MainDispatch, &message.DispatchRequest{})
	require.Error(t, err)
}

func TestAudioSegmentIsNilBeforeMapAudio(t *testing.T) {
	in := &Instance{}
	require.Nil(t, in.AudioSegment())
}
