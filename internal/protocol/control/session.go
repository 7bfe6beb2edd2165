package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/danmuck/pcapctl/internal/protocol/frame"
	"github.com/danmuck/pcapctl/internal/worklist"
	"github.com/rs/zerolog/log"
)

var (
	ErrConnect           = errors.New("control: can not connect")
	ErrHandshake         = errors.New("control: handshake failed")
	ErrSubmit            = errors.New("control: submit failed")
	ErrRejected          = errors.New("control: daemon rejected request")
	ErrMalformedReply    = errors.New("control: malformed reply")
	ErrNotHandshaked     = errors.New("control: handshake required before commands")
	ErrAlreadyHandshaked = errors.New("control: handshake already completed")
	ErrSessionClosed     = errors.New("control: session closed")
)

type State int

const (
	StateConnected State = iota + 1
	StateHandshaked
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateHandshaked:
		return "handshaked"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one live control-socket connection. It is not safe for
// concurrent use; commands are strictly sequential.
type Session struct {
	conn   net.Conn
	reader *bufio.Reader
	cfg    Config
	state  State
}

// Dial connects to the control socket named by cfg.SocketPath.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.WithDefaults()
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", cfg.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, cfg.SocketPath, err)
	}
	log.Debug().Str("socket", cfg.SocketPath).Msg("control: connected")
	return NewSession(conn, cfg), nil
}

// NewSession wraps an already connected stream.
func NewSession(conn net.Conn, cfg Config) *Session {
	return &Session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		cfg:    cfg.WithDefaults(),
		state:  StateConnected,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Close() error {
	if s.conn == nil || s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	return s.conn.Close()
}

// Handshake announces the client version and returns the daemon's reply.
func (s *Session) Handshake(ctx context.Context) ([]byte, error) {
	switch s.state {
	case StateHandshaked:
		return nil, ErrAlreadyHandshaked
	case StateClosed:
		return nil, ErrSessionClosed
	}

	payload, err := frame.Encode(Handshake{Version: s.cfg.ClientVersion}, s.cfg.Limits)
	if err != nil {
		return nil, fmt.Errorf("%w: can not create message: %w", ErrHandshake, err)
	}
	reply, err := s.exchange(ctx, payload, s.cfg.HandshakeTimeout, s.cfg.HandshakeTimeout)
	if err != nil {
		return reply, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if err := s.checkReply(reply); err != nil {
		return reply, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	s.state = StateHandshaked
	log.Debug().Str("version", s.cfg.ClientVersion).Msg("control: handshake complete")
	return reply, nil
}

// Submit sends one pcap-file command for entry and returns the daemon's reply.
// A failure here concerns this entry only; the session stays usable.
func (s *Session) Submit(ctx context.Context, entry worklist.Entry) ([]byte, error) {
	switch s.state {
	case StateConnected:
		return nil, ErrNotHandshaked
	case StateClosed:
		return nil, ErrSessionClosed
	}

	payload, err := frame.Encode(NewPcapFileCommand(entry.SourcePath, entry.OutputDir), s.cfg.Limits)
	if err != nil {
		return nil, fmt.Errorf("%w: can not create message: %w", ErrSubmit, err)
	}
	reply, err := s.exchange(ctx, payload, s.cfg.WriteTimeout, s.cfg.ReadTimeout)
	if err != nil {
		return reply, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	if err := s.checkReply(reply); err != nil {
		return reply, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	return reply, nil
}

// exchange writes payload in full, then blocks for one reply line. Both
// deadlines are set before any I/O so that cancelling ctx, which moves them
// to now, cannot be overridden mid-exchange. A truncated reply is returned
// together with its error.
func (s *Session) exchange(ctx context.Context, payload []byte, writeTimeout, readTimeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.conn.SetWriteDeadline(deadline(ctx, writeTimeout)); err != nil {
		return nil, err
	}
	if err := s.conn.SetReadDeadline(deadline(ctx, writeTimeout+readTimeout)); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := frame.WriteFull(s.conn, payload); err != nil {
		return nil, interrupted(ctx, fmt.Errorf("can not send info: %w", err))
	}
	reply, err := frame.ReadReply(s.reader, s.cfg.Limits)
	if err != nil {
		if errors.Is(err, frame.ErrReplyTruncated) {
			return reply, fmt.Errorf("can not read answer: %w", err)
		}
		return nil, interrupted(ctx, fmt.Errorf("can not read answer: %w", err))
	}
	return reply, nil
}

// interrupted attaches the context's error to err when ctx ended the I/O.
func interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

func (s *Session) checkReply(raw []byte) error {
	reply, ok := ParseReply(raw)
	if !ok {
		if s.cfg.Strict {
			return fmt.Errorf("%w: %q", ErrMalformedReply, strings.TrimSpace(string(raw)))
		}
		return nil
	}
	if reply.OK() {
		return nil
	}
	if s.cfg.Strict {
		return fmt.Errorf("%w: return=%s message=%s", ErrRejected, reply.Return, string(reply.Message))
	}
	log.Warn().Str("return", reply.Return).RawJSON("message", messageJSON(reply.Message)).Msg("control: daemon reported failure")
	return nil
}

func messageJSON(m []byte) []byte {
	if len(m) == 0 {
		return []byte("null")
	}
	return m
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		d = ctxDeadline
	}
	return d
}
