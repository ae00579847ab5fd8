package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Meet/internal/core"
)

func socketPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- c
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return <-accepted, client
}

func TestWritePumpClosesConnectionOnWriteError(t *testing.T) {
	server, client := socketPair(t)

	wc := newWSConn(server)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go wc.writePump(ctx, 10*time.Millisecond)

	// Kill the peer: the next ping fails and the pump must close the
	// connection, so a blocked reader errors out instead of ghosting in
	// the roster.
	require.NoError(t, client.Close())

	assert.Eventually(t, func() bool {
		err := wc.TrySend(core.Frame(`{"event":"ping"}`))
		return err != nil && !errors.Is(err, ErrBackpressure)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWritePumpStopsOnContextCancel(t *testing.T) {
	server, _ := socketPair(t)

	wc := newWSConn(server)
	ctx, cancel := context.WithCancel(context.Background())
	go wc.writePump(ctx, time.Minute)

	cancel()

	assert.Eventually(t, func() bool {
		err := wc.TrySend(core.Frame(`{"event":"ping"}`))
		return err != nil && !errors.Is(err, ErrBackpressure)
	}, 2*time.Second, 10*time.Millisecond)
}
