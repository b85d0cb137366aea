package command

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs a Server on a loopback port and returns its address.
func startServer(t *testing.T) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(newTestHandler(), metrics.NewRecorder(), logging.Discard())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()
	t.Cleanup(cancel)

	return ln.Addr().String(), cancel, errCh
}

func TestServerRequestReply(t *testing.T) {
	addr, _, _ := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Do(ctx, "create|tournament|1|Cup|6")
	require.NoError(t, err)
	assert.Equal(t, ReplyFinished, reply)

	reply, err = client.Do(ctx, "create|tournament|1|Cup|6")
	assert.ErrorIs(t, err, bracket.ErrConflictingState)
	assert.Contains(t, reply, "Error|conflicting_state|")

	reply, err = client.Do(ctx, "fetchall")
	require.NoError(t, err)
	assert.Contains(t, reply, `"tournaments":{"1":`)

	_, err = client.Do(ctx, "fetchall\nfetchall")
	assert.ErrorIs(t, err, bracket.ErrInvalidArgument)
}

func TestServerConcurrentClients(t *testing.T) {
	addr, _, _ := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := Dial(ctx, addr)
			if err != nil {
				errs <- err
				return
			}
			defer client.Close()
			if _, err := client.Do(ctx, "create|tournament|"+string(rune('0'+i))+"|Cup|4"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	client, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Do(ctx, "fetchall")
	require.NoError(t, err)
	for i := range 8 {
		assert.Contains(t, reply, `"`+string(rune('0'+i))+`":{"name":"Cup"`)
	}
}

func TestServerShutdown(t *testing.T) {
	addr, cancel, errCh := startServer(t)
	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	client, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Do(ctx, "fetchall")
	require.NoError(t, err)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = client.Do(ctx, "fetchall")
	assert.Error(t, err)
}

func TestClientDoHonoursContext(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()

	client := NewClient(clientConn)
	defer client.Close()

	go func() {
		buf := make([]byte, 64)
		server.Read(buf)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, "fetchall")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// echoServer answers every line with "reply-to-<line>", holding the reply to
// "slow" back for a while.
func echoServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					if scanner.Text() == "slow" {
						time.Sleep(200 * time.Millisecond)
					}
					if _, err := conn.Write([]byte("reply-to-" + scanner.Text() + "\n")); err != nil {
						return
					}
				}
			}()
		}
	}()
	return ln.Addr().String()
}

func TestClientTimeoutDoesNotMisalignReplies(t *testing.T) {
	addr := echoServer(t)

	client, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Do(ctx, "slow")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the late reply to "slow" must never be handed to this request
	time.Sleep(300 * time.Millisecond)
	reply, err := client.Do(context.Background(), "fast")
	assert.ErrorIs(t, err, ErrClientBroken)
	assert.Empty(t, reply)

	fresh, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer fresh.Close()

	reply, err = fresh.Do(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "reply-to-fast", reply)
}
