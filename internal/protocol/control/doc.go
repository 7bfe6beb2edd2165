// Package control owns the client side of the daemon's Unix control socket.
//
// Ownership boundary:
// - version handshake and pcap-file command envelopes
// - one connection per run, one request in flight
// - connect/read/write deadlines
package control
