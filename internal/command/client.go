package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
)

// RemoteError is an "Error|<kind>|<message>" reply. It unwraps to the
// matching sentinel so callers can use errors.Is.
type RemoteError struct {
	Kind    bracket.ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error {
	switch e.Kind {
	case bracket.KindInvalidArgument:
		return bracket.ErrInvalidArgument
	case bracket.KindNotFound:
		return bracket.ErrNotFound
	case bracket.KindConflictingState:
		return bracket.ErrConflictingState
	case bracket.KindStorageUnavailable:
		return bracket.ErrStorageUnavailable
	default:
		return nil
	}
}

// ParseReply returns a *RemoteError for error replies and nil otherwise.
func ParseReply(reply string) error {
	if reply != replyError && !strings.HasPrefix(reply, replyError+separator) {
		return nil
	}
	parts := strings.SplitN(reply, separator, 3)
	e := &RemoteError{Kind: bracket.KindInternal}
	if len(parts) > 1 {
		e.Kind = bracket.ErrorKind(parts[1])
	}
	if len(parts) > 2 {
		e.Message = parts[2]
	}
	return e
}

// ErrClientBroken is returned by Do once an earlier request failed mid-flight.
// The reply to that request may still arrive, so the connection is dropped
// rather than reused.
var ErrClientBroken = errors.New("command client connection is broken")

// Client sends one request and waits for its reply. It is safe for
// concurrent use; requests on one connection are serialised.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	broken error
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn)}
}

// Do sends line and returns the reply without its trailing newline. An error
// reply from the server is returned as a *RemoteError alongside the raw reply.
func (c *Client) Do(ctx context.Context, line string) (string, error) {
	if strings.ContainsAny(line, "\r\n") {
		return "", fmt.Errorf("%w: request must be a single line", bracket.ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return "", fmt.Errorf("%w: %w", ErrClientBroken, c.broken)
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", c.fail(ctx, err)
	}
	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return "", c.fail(ctx, err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	return reply, ParseReply(reply)
}

// fail closes the connection so a late reply can never be read as the answer
// to the next request.
func (c *Client) fail(ctx context.Context, err error) error {
	err = wrapTransport(ctx, err)
	c.broken = err
	c.conn.Close()
	return err
}

func wrapTransport(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("command connection failed: %w", err)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
