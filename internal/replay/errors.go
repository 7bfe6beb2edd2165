package replay

import (
	"context"
	"errors"

	"github.com/danmuck/pcapctl/internal/protocol/control"
	"github.com/danmuck/pcapctl/internal/worklist"
)

// Error classes surfaced by a run. Every error returned from Run wraps exactly
// one of these.
var (
	ErrUsage       = errors.New("usage error")
	ErrIO          = errors.New("io error")
	ErrResource    = errors.New("resource error")
	ErrConnection  = errors.New("connection error")
	ErrProtocol    = errors.New("protocol error")
	ErrSubmission  = errors.New("submission error")
	ErrInterrupted = errors.New("interrupted")
)

var classes = []error{ErrUsage, ErrIO, ErrResource, ErrConnection, ErrProtocol, ErrSubmission, ErrInterrupted}

// Kind returns the class name of err, or "" when err is unclassified.
func Kind(err error) string {
	for _, c := range classes {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return ""
}

// classify maps lower-level sentinels onto the run taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrInterrupted
	case errors.Is(err, worklist.ErrResource):
		return ErrResource
	case errors.Is(err, worklist.ErrInvalidEntry):
		return ErrUsage
	case errors.Is(err, worklist.ErrListFile),
		errors.Is(err, worklist.ErrSourceUnreadable),
		errors.Is(err, worklist.ErrOutputDirMissing),
		errors.Is(err, worklist.ErrOutputNotDir),
		errors.Is(err, worklist.ErrNotCapture):
		return ErrIO
	case errors.Is(err, control.ErrConnect):
		return ErrConnection
	case errors.Is(err, control.ErrHandshake):
		return ErrProtocol
	case errors.Is(err, control.ErrSubmit):
		return ErrSubmission
	default:
		return nil
	}
}
