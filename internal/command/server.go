package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/google/uuid"
)

const maxLineBytes = 64 * 1024

// Server accepts command connections and answers one reply line per request
// line.
type Server struct {
	handler  *Handler
	recorder *metrics.Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	stopping bool
	wg       sync.WaitGroup
}

func NewServer(handler *Handler, recorder *metrics.Recorder, logger *slog.Logger) *Server {
	return &Server{
		handler:  handler,
		recorder: recorder,
		logger:   logger,
		conns:    make(map[net.Conn]struct{}),
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve blocks until ctx is cancelled or the listener fails. On cancellation
// it stops accepting, lets in-flight commands reply, and waits for every
// connection to close.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logging.Info(s.logger, "command server listening", logging.FieldAddr, ln.Addr().String())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
			s.interruptConns()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				logging.Info(s.logger, "command server stopped")
				return nil
			}
			ln.Close()
			s.interruptConns()
			s.wg.Wait()
			return fmt.Errorf("accept failed: %w", err)
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serveConn(context.WithoutCancel(ctx), conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger
	if logger != nil {
		logger = logger.With(
			logging.FieldConnID, uuid.NewString(),
			logging.FieldRemoteAddr, conn.RemoteAddr().String(),
		)
	}
	logging.Info(logger, "client connected")
	s.recorder.ConnectionOpened()
	defer s.recorder.ConnectionClosed()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		start := time.Now()
		reply := s.handler.Handle(ctx, scanner.Text())

		if _, err := writer.WriteString(reply + "\n"); err != nil {
			logging.Warn(logger, "failed to write reply", "error", err)
			return
		}
		if err := writer.Flush(); err != nil {
			logging.Warn(logger, "failed to write reply", "error", err)
			return
		}
		if logger != nil {
			logger.Debug("command handled", logging.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}

	if err := scanner.Err(); err != nil && !isClosed(err) {
		if errors.Is(err, bufio.ErrTooLong) {
			writer.WriteString(ErrorReply(invalid("line exceeds %d bytes", maxLineBytes)) + "\n")
			writer.Flush()
		}
		logging.Warn(logger, "connection read failed", "error", err)
	}
	logging.Info(logger, "client disconnected")
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
	if s.stopping {
		conn.SetReadDeadline(time.Now())
	}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// interruptConns unblocks every pending read so the connection loops exit
// after their current command.
func (s *Server) interruptConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping = true
	for conn := range s.conns {
		conn.SetReadDeadline(time.Now())
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) || isTimeout(err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
