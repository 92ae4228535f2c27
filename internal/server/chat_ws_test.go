package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConn struct {
	mu     sync.Mutex
	writes int
}

func (c *failingConn) SetWriteDeadline(time.Time) error { return nil }

func (c *failingConn) WriteJSON(any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	return errors.New("broken pipe")
}

func (c *failingConn) WriteMessage(int, []byte) error { return errors.New("broken pipe") }

func TestChatWriterCancelsOnWriteFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := &failingConn{}
	writeCh := make(chan chatWSOutbound, 1)
	writeCh <- chatWSOutbound{Type: "done"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runChatWriter(ctx, cancel, conn, writeCh, time.Hour)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not stop after a failed write")
	}
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, 1, conn.writes)
}

func TestChatWriterCancelsOnPingFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runChatWriter(ctx, cancel, &failingConn{}, make(chan chatWSOutbound), 10*time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not stop after a failed ping")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
