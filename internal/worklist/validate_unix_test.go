//go:build unix

package worklist

import (
	"errors"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/danmuck/pcapctl/internal/testutil/testlog"
)

func TestValidateRejectsFIFOWithoutBlocking(t *testing.T) {
	testlog.Start(t)

	dir := t.TempDir()
	fifo := filepath.Join(dir, "live.pcap")
	if err := syscall.Mkfifo(fifo, 0o644); err != nil {
		t.Skipf("mkfifo unsupported here: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- (Validator{}).Validate(Entry{SourcePath: fifo, OutputDir: dir})
	}()
	select {
	case err := <-done:
		if !errors.Is(err, ErrSourceUnreadable) {
			t.Fatalf("expected ErrSourceUnreadable, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("validate blocked on a FIFO source")
	}
}
