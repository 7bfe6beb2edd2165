package capture

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func TestProbePcap(t *testing.T) {
	var buf bytes.Buffer
	if err := pcapgo.NewWriter(&buf).WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("write header: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())

	format, err := Probe(r)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if format.Kind != KindPcap {
		t.Fatalf("unexpected kind: %v", format.Kind)
	}
	if format.LinkType != layers.LinkTypeEthernet.String() {
		t.Fatalf("unexpected link type: %q", format.LinkType)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
		t.Fatalf("expected offset reset, got %d", pos)
	}
}

func TestProbePcapNG(t *testing.T) {
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeEthernet)
	if err != nil {
		t.Fatalf("new ng writer: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	format, err := Probe(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if format.Kind != KindPcapNG {
		t.Fatalf("unexpected kind: %v", format.Kind)
	}
}

func TestProbeUnknown(t *testing.T) {
	_, err := Probe(bytes.NewReader([]byte("GET / HTTP/1.1\r\n\r\n and some more bytes")))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
