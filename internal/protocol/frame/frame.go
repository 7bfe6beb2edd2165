package frame

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// A 512-byte exchange buffer with one byte held back.
	DefaultMaxRequestBytes = 511
	DefaultMaxReplyBytes   = 512
	Terminator             = '\n'
)

var (
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrEmptyReply      = errors.New("frame: empty reply")
	ErrReplyTruncated  = errors.New("frame: reply truncated")
)

// Limits constrains one request/reply exchange.
type Limits struct {
	MaxRequestBytes int
	MaxReplyBytes   int
}

func DefaultLimits() Limits {
	return Limits{
		MaxRequestBytes: DefaultMaxRequestBytes,
		MaxReplyBytes:   DefaultMaxReplyBytes,
	}
}

func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxRequestBytes <= 0 {
		l.MaxRequestBytes = d.MaxRequestBytes
	}
	if l.MaxReplyBytes <= 0 {
		l.MaxReplyBytes = d.MaxReplyBytes
	}
	return l
}

// Encode marshals v as one terminated line. An envelope that would not fit is
// rejected, never truncated.
func Encode(v any, limits Limits) ([]byte, error) {
	limits = limits.WithDefaults()
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	payload = append(payload, Terminator)
	if len(payload) > limits.MaxRequestBytes {
		return nil, ErrPayloadTooLarge
	}
	return payload, nil
}

// WriteFull writes the whole payload or reports io.ErrShortWrite.
func WriteFull(w io.Writer, payload []byte) error {
	n, err := w.Write(payload)
	if err != nil {
		return err
	}
	if n < len(payload) {
		return io.ErrShortWrite
	}
	return nil
}

// ReadReply reads one newline-terminated reply, without the terminator. A
// reply longer than MaxReplyBytes is cut at the limit and the remainder of its
// line is discarded, so the next read starts at the next reply. EOF after a
// partial line yields that line.
func ReadReply(r *bufio.Reader, limits Limits) ([]byte, error) {
	limits = limits.WithDefaults()
	reply := make([]byte, 0, min(limits.MaxReplyBytes, 4096))
	for {
		b, err := r.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			if len(reply) == 0 {
				return nil, ErrEmptyReply
			}
			return reply, nil
		}
		if b == Terminator {
			return reply, nil
		}
		if len(reply) == limits.MaxReplyBytes {
			if err := discardLine(r); err != nil && !errors.Is(err, io.EOF) {
				return reply, fmt.Errorf("%w: %w", ErrReplyTruncated, err)
			}
			return reply, fmt.Errorf("%w: longer than %d bytes", ErrReplyTruncated, limits.MaxReplyBytes)
		}
		reply = append(reply, b)
	}
}

func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice(Terminator)
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}
