package control

import (
	"encoding/json"
	"strings"
)

const (
	CommandPcapFile = "pcap-file"

	ReturnOK    = "OK"
	ReturnNotOK = "NOK"
)

// Handshake is the version announcement sent once per session.
type Handshake struct {
	Version string `json:"version"`
}

// Command is one daemon command envelope.
type Command struct {
	Command   string       `json:"command"`
	Arguments PcapFileArgs `json:"arguments"`
}

type PcapFileArgs struct {
	Filename  string `json:"filename"`
	OutputDir string `json:"output-dir"`
}

func NewPcapFileCommand(filename, outputDir string) Command {
	return Command{
		Command: CommandPcapFile,
		Arguments: PcapFileArgs{
			Filename:  filename,
			OutputDir: outputDir,
		},
	}
}

// Reply is the daemon's usual answer shape. Message is kept raw because the
// daemon sends either a string or an object there.
type Reply struct {
	Return  string          `json:"return"`
	Message json.RawMessage `json:"message,omitempty"`
}

func (r Reply) OK() bool {
	return strings.EqualFold(strings.TrimSpace(r.Return), ReturnOK)
}

// ParseReply decodes raw when it looks like a reply envelope. Callers still
// surface raw verbatim; ok is false for anything that does not decode.
func ParseReply(raw []byte) (Reply, bool) {
	var r Reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return Reply{}, false
	}
	if strings.TrimSpace(r.Return) == "" {
		return Reply{}, false
	}
	return r, true
}
