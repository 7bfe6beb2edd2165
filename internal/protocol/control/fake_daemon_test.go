package control

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeDaemon answers each newline-terminated request with respond(req).
// A nil response closes the connection; an empty one leaves the request
// unanswered.
type fakeDaemon struct {
	path    string
	ln      net.Listener
	respond func(req []byte) []byte

	mu       sync.Mutex
	requests [][]byte
	done     chan error
}

func startFakeDaemon(t *testing.T, respond func(req []byte) []byte) *fakeDaemon {
	t.Helper()
	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "pcapctl")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "ctl.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &fakeDaemon{path: path, ln: ln, respond: respond, done: make(chan error, 1)}
	go func() { d.done <- d.serve() }()
	t.Cleanup(func() {
		_ = ln.Close()
		<-d.done
	})
	return d
}

func (d *fakeDaemon) serve() error {
	conn, err := d.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil
		}
		d.mu.Lock()
		d.requests = append(d.requests, line)
		d.mu.Unlock()

		reply := d.respond(line)
		if reply == nil {
			return nil
		}
		if _, err := conn.Write(reply); err != nil {
			return nil
		}
	}
}

func (d *fakeDaemon) Requests() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.requests))
	copy(out, d.requests)
	return out
}

func okReply(req []byte) []byte {
	return []byte(`{"return": "OK", "message": "Successfully added file to list"}` + "\n")
}

func decodeRequest(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode request %q: %v", raw, err)
	}
	return out
}
