package server

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/fight-club/lockstep/internal/protocol"
)

// frameDataRateLimit bounds how fast one connection's FRAME_DATA messages
// are accepted: generous headroom over the 20 Hz tick cadence so a
// well-behaved client never notices it, while a buggy or flooding one is
// capped rather than left to grow the room's input buffer unbounded.
const (
	frameDataRatePerSecond = 60
	frameDataBurst         = 120
)

// readDeadline is the rolling per-read timeout named in §5: a timeout is
// non-fatal and the read loop simply loops back.
const readDeadline = 30 * time.Second

const writeDeadline = 5 * time.Second

// conn wraps one client socket. It is the sole writer for itself (§5); all
// outbound frames go through Send, which serializes writers with writeMu so
// the room ticker's broadcast and a reply to an inbound message never
// interleave mid-frame.
type conn struct {
	net.Conn
	writeMu sync.Mutex

	playerID uint32
	roomID   uint32

	lastSeenUnixNano int64 // atomic

	inputLimiter *rate.Limiter
}

func newConn(nc net.Conn) *conn {
	c := &conn{
		Conn:         nc,
		inputLimiter: rate.NewLimiter(rate.Limit(frameDataRatePerSecond), frameDataBurst),
	}
	c.touch()
	return c
}

// touch refreshes last-seen on any inbound message, per §5's heartbeat
// contract ("any inbound message refreshes last_seen").
func (c *conn) touch() {
	atomic.StoreInt64(&c.lastSeenUnixNano, time.Now().UnixNano())
}

func (c *conn) idleSince() time.Duration {
	last := atomic.LoadInt64(&c.lastSeenUnixNano)
	return time.Since(time.Unix(0, last))
}

// Send writes one length-prefixed frame. Safe for concurrent use.
func (c *conn) Send(msgType byte, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return protocol.WriteFrame(c.Conn, msgType, payload)
}

// serve runs the per-connection read loop until the peer disconnects or an
// unrecoverable framing error occurs. It owns the connection's lifecycle:
// on return, the connection has already been closed and removed from its
// room.
func (reg *Registry) serve(nc net.Conn) {
	c := newConn(nc)
	defer c.Close()

	if !reg.handshake(c) {
		return
	}
	defer reg.disconnect(c)

	for {
		_ = c.Conn.SetReadDeadline(time.Now().Add(readDeadline))
		msgType, payload, err := protocol.ReadFrame(c.Conn)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if err == protocol.ErrOversizedFrame {
				log.Printf("server: player %d sent oversized frame, dropping connection", c.playerID)
				divergenceEvents.Inc()
				return
			}
			// EOF or reset: peer went away, not a protocol violation.
			return
		}
		c.touch()
		reg.dispatch(c, msgType, payload)
	}
}

// handshake consumes the initial CONNECT, assigns a player_id, echoes it
// back, and joins the caller to a room. Returns false if the handshake
// could not complete (bad framing, wrong first message).
func (reg *Registry) handshake(c *conn) bool {
	_ = c.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	msgType, payload, err := protocol.ReadFrame(c.Conn)
	if err != nil {
		return false
	}
	if msgType != protocol.TypeConnect {
		log.Printf("server: expected CONNECT as first message, got type %d", msgType)
		recordDropped("unknown_type")
		return false
	}
	req, err := protocol.DecodeConnect(payload)
	if err != nil {
		recordDropped("bad_payload")
		return false
	}

	playerID := reg.nextPlayerID()
	c.playerID = playerID
	c.touch()

	resp := protocol.EncodeConnect(protocol.Connect{PlayerID: playerID, PlayerName: req.PlayerName})
	if err := c.Send(protocol.TypeConnect, resp); err != nil {
		return false
	}

	room := reg.assign(c)
	log.Printf("server: player %d (%q) joined room %d", playerID, req.PlayerName, room.id)
	return true
}

// dispatch routes one decoded message to its handler. Unknown types and
// malformed payloads are dropped and counted (unknown types are also
// logged), never fatal to the connection (§7 protocol error policy).
func (reg *Registry) dispatch(c *conn, msgType byte, payload []byte) {
	room := reg.room(c.roomID)
	if room == nil {
		return
	}

	switch msgType {
	case protocol.TypeFrameData:
		if !c.inputLimiter.Allow() {
			recordDropped("rate_limited")
			return
		}
		fd, err := protocol.DecodeFrameData(payload)
		if err != nil {
			recordDropped("bad_payload")
			return
		}
		room.acceptInput(fd)

	case protocol.TypeFrameLoss:
		req, err := protocol.DecodeFrameLoss(payload)
		if err != nil {
			recordDropped("bad_payload")
			return
		}
		frameLossRequests.Inc()
		room.serveFrameLoss(c, req.FromFrame, req.ToFrame)

	case protocol.TypeHeartbeat:
		// touch() already ran in serve(); nothing further to do.

	case protocol.TypeDisconnect:
		// The read loop will see the closed connection and clean up;
		// nothing to act on immediately beyond the already-refreshed
		// last-seen timestamp.

	default:
		log.Printf("server: unknown message type %d from player %d", msgType, c.playerID)
		recordDropped("unknown_type")
	}
}

func (reg *Registry) disconnect(c *conn) {
	room := reg.room(c.roomID)
	if room == nil {
		return
	}
	room.leave(c.playerID)
}
