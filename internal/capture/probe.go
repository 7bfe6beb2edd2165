// Package capture sniffs capture file headers without decoding packets.
package capture

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket/pcapgo"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindPcap
	KindPcapNG
)

func (k Kind) String() string {
	switch k {
	case KindPcap:
		return "pcap"
	case KindPcapNG:
		return "pcapng"
	default:
		return "unknown"
	}
}

var ErrUnknownFormat = errors.New("capture: unrecognized file header")

// Format is what the header tells us about a capture.
type Format struct {
	Kind     Kind
	LinkType string
}

// Probe reads the capture header from the start of rs. The read offset is
// restored to the start before returning.
func Probe(rs io.ReadSeeker) (Format, error) {
	defer rs.Seek(0, io.SeekStart)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Format{}, err
	}
	if r, err := pcapgo.NewReader(rs); err == nil {
		return Format{Kind: KindPcap, LinkType: r.LinkType().String()}, nil
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Format{}, err
	}
	ng, err := pcapgo.NewNgReader(rs, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return Format{}, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}
	return Format{Kind: KindPcapNG, LinkType: ng.LinkType().String()}, nil
}
