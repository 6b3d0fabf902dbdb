package p2p

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Request opens a connection to the host, writes the message and waits for
// a single reply.
func Request(ctx context.Context, host string, msg Message, timeout time.Duration) (Message, error) {
	conn, err := dial(ctx, host, timeout)
	if err != nil {
		return Message{}, err
	}
	defer conn.Close()

	if err := Encode(conn, msg); err != nil {
		return Message{}, fmt.Errorf("%s: %w", host, err)
	}

	resp, err := Decode(conn)
	if err != nil {
		return Message{}, fmt.Errorf("%s: %w", host, err)
	}

	return resp, nil
}

// Send opens a connection to the host and writes the message. No reply
// is expected.
func Send(ctx context.Context, host string, msg Message, timeout time.Duration) error {
	conn, err := dial(ctx, host, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := Encode(conn, msg); err != nil {
		return fmt.Errorf("%s: %w", host, err)
	}

	return nil
}

// dial connects to the host and applies the timeout to every read and
// write on the connection.
func dial(ctx context.Context, host string, timeout time.Duration) (net.Conn, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}

	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", host, err)
	}

	conn.SetDeadline(time.Now().Add(timeout))

	return conn, nil
}
