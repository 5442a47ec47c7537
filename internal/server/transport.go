package server

import (
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// listenKCP opens the reliable-ordered UDP (KCP) endpoint, the primary
// transport target named in §4.9. No FEC shards and no block cipher are
// configured — this module's threat model is "trusted matchmaking,
// untrusted network", not wire encryption, which is explicitly out of
// scope (§1 non-goals list anti-cheat, and encryption is not named as an
// in-scope concern either).
func listenKCP(addr string) (net.Listener, error) {
	return kcp.ListenWithOptions(addr, nil, 0, 0)
}

// listenTCP opens the TCP fallback endpoint, equivalent per §4.9.
func listenTCP(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
