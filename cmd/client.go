package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/bnema/stilch/internal/config"
	"github.com/bnema/stilch/internal/ipc"
)

// testClient is a thin connection to the test channel (§6): one JSON
// request per line, one JSON response per line, no broadcast. It plays
// the role the teacher's internal/ipc Client plays for cmd/switch.go and
// cmd/status.go, but speaks the test channel's line-JSON framing
// instead of the teacher's protobuf-over-length-prefix framing (see
// DESIGN.md's dropped-dependency entry for internal/proto).
type testClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// testSocketPath resolves the socket a command should dial: the
// STILCH_TEST_SOCKET env var first (so scripts and test-inject can
// point at a throwaway socket), falling back to the configured default.
func testSocketPath() string {
	if p := os.Getenv("STILCH_TEST_SOCKET"); p != "" {
		return p
	}
	return config.Get().TestSocketPath
}

// dialTestChannel connects to the running compositor's test channel,
// the way the teacher's ipc.NewClient dials the control socket before
// every subcommand that needs a live server.
func dialTestChannel() (*testClient, error) {
	path := testSocketPath()
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("not connected to a running stilch instance at %s: %w", path, err)
	}
	return &testClient{conn: conn, scanner: bufio.NewScanner(conn)}, nil
}

func (c *testClient) Close() error { return c.conn.Close() }

// send marshals req, writes it as one line, and decodes the matching
// response line.
func (c *testClient) send(req ipc.Request) (ipc.Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return ipc.Response{}, fmt.Errorf("encoding request: %w", err)
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return ipc.Response{}, fmt.Errorf("writing request: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return ipc.Response{}, fmt.Errorf("reading response: %w", err)
		}
		return ipc.Response{}, fmt.Errorf("connection closed before a response arrived")
	}

	var resp ipc.Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return ipc.Response{}, fmt.Errorf("decoding response: %w", err)
	}
	if !resp.Success {
		return resp, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}

// runCommand is the common shape every subcommand in this package uses:
// dial, send one request, close.
func runCommand(req ipc.Request) (ipc.Response, error) {
	client, err := dialTestChannel()
	if err != nil {
		return ipc.Response{}, err
	}
	defer client.Close()
	return client.send(req)
}
