package adapters

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateListener_StagesReceivedImage(t *testing.T) {
	staging := t.TempDir()

	listener, err := NewUpdateListener(UpdateListenerParams{
		Addr:       "127.0.0.1:0",
		StagingDir: staging,
		Log:        zerolog.Nop(),
	})
	require.NoError(t, err)
	defer listener.Close()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)

	image := []byte("not a real firmware image")
	_, err = conn.Write(image)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// reception runs in the background; poll until the staged file lands
	deadline := time.Now().Add(5 * time.Second)
	for {
		entries, err := os.ReadDir(staging)
		require.NoError(t, err)
		if len(entries) > 0 {
			info, err := entries[0].Info()
			require.NoError(t, err)
			assert.Equal(t, int64(len(image)), info.Size())
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("staged firmware image never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// drains the completion event without blocking
	listener.Handle()
}

func TestUpdateListener_HandleIsNonBlocking(t *testing.T) {
	listener, err := NewUpdateListener(UpdateListenerParams{
		Addr:       "127.0.0.1:0",
		StagingDir: t.TempDir(),
		Log:        zerolog.Nop(),
	})
	require.NoError(t, err)
	defer listener.Close()

	done := make(chan struct{})
	go func() {
		listener.Handle()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked with an empty queue")
	}
}
