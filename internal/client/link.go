// Package client implements the client side of the lockstep frame
// protocol (§4.9): dialing a room server, completing the
// CONNECT/GAME_START handshake, and feeding local input through the
// rollback controller while classifying and reacting to each inbound
// ServerFrame.
package client

import (
	"fmt"
	"net"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"

	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/protocol"
	"github.com/fight-club/lockstep/internal/rollback"
	"github.com/fight-club/lockstep/internal/simulation"
)

// Link is one client's connection to its room: the wire socket plus the
// rollback controller driving the locally-visible World.
type Link struct {
	conn     net.Conn
	playerID uint32
	roomID   uint32
	seed     int64
	players  []uint32

	Controller *rollback.Controller
	cfg        simulation.Config

	maxSnapshots int
}

// Dial connects to a room server over the named network ("tcp" or "kcp"),
// completes the CONNECT handshake, and blocks until GAME_START arrives.
// The returned Link's Controller is seeded and ready for Predict calls.
func Dial(network, addr, playerName string, cfg simulation.Config, maxSnapshots int) (*Link, error) {
	var nc net.Conn
	var err error
	switch network {
	case "kcp":
		nc, err = kcp.DialWithOptions(addr, nil, 0, 0)
	case "tcp":
		nc, err = net.Dial("tcp", addr)
	default:
		return nil, fmt.Errorf("client: unknown network %q", network)
	}
	if err != nil {
		return nil, fmt.Errorf("client: dial: %w", err)
	}

	l := &Link{conn: nc, cfg: cfg, maxSnapshots: maxSnapshots}
	if err := l.handshake(playerName); err != nil {
		nc.Close()
		return nil, err
	}
	return l, nil
}

func (l *Link) handshake(playerName string) error {
	if err := protocol.WriteFrame(l.conn, protocol.TypeConnect, protocol.EncodeConnect(protocol.Connect{PlayerName: playerName})); err != nil {
		return fmt.Errorf("client: send CONNECT: %w", err)
	}

	msgType, payload, err := protocol.ReadFrame(l.conn)
	if err != nil {
		return fmt.Errorf("client: read CONNECT reply: %w", err)
	}
	if msgType != protocol.TypeConnect {
		return fmt.Errorf("client: expected CONNECT reply, got type %d", msgType)
	}
	resp, err := protocol.DecodeConnect(payload)
	if err != nil {
		return fmt.Errorf("client: decode CONNECT reply: %w", err)
	}
	l.playerID = resp.PlayerID

	msgType, payload, err = protocol.ReadFrame(l.conn)
	if err != nil {
		return fmt.Errorf("client: read GAME_START: %w", err)
	}
	if msgType != protocol.TypeGameStart {
		return fmt.Errorf("client: expected GAME_START, got type %d", msgType)
	}
	start, err := protocol.DecodeGameStart(payload)
	if err != nil {
		return fmt.Errorf("client: decode GAME_START: %w", err)
	}
	l.roomID = start.RoomID
	l.seed = start.RandomSeed
	l.players = start.PlayerIDs

	world := simulation.NewRoomWorld(l.seed, l.players, l.cfg)
	l.Controller = rollback.NewController(world, l.cfg, l.maxSnapshots)
	return nil
}

// PlayerID returns the server-assigned player ID.
func (l *Link) PlayerID() uint32 { return l.playerID }

// DirectionVector maps the wire direction enum to the unit vector the
// simulation consumes. Every client derives the identical vector from the
// identical enum value, which is what keeps the wire compact without
// risking divergent float parsing.
func DirectionVector(d protocol.InputDirection) fixedmath.Vec2 {
	switch d {
	case protocol.DirectionUp:
		return fixedmath.NewVec2(fixedmath.Zero, fixedmath.One)
	case protocol.DirectionDown:
		return fixedmath.NewVec2(fixedmath.Zero, fixedmath.One.Neg())
	case protocol.DirectionLeft:
		return fixedmath.NewVec2(fixedmath.One.Neg(), fixedmath.Zero)
	case protocol.DirectionRight:
		return fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	default:
		return fixedmath.Vec2{}
	}
}

// Predict speculatively advances the local world by one frame with this
// player's input and sends the corresponding FRAME_DATA upstream.
func (l *Link) Predict(dir protocol.InputDirection, actions simulation.ActionFlags) (frame uint64, err error) {
	input := simulation.FrameInput{PlayerID: l.playerID, Direction: DirectionVector(dir), Actions: actions}
	frame = l.Controller.Predict(l.playerID, input)

	fd := protocol.FrameData{
		PlayerID:    l.playerID,
		Direction:   dir,
		Actions:     uint32(actions),
		FrameNumber: frame,
	}
	err = protocol.WriteFrame(l.conn, protocol.TypeFrameData, protocol.EncodeFrameData(fd))
	return frame, err
}

// Heartbeat sends an empty HEARTBEAT frame, refreshing the server's
// last-seen timestamp for this connection during quiet periods (§5).
func (l *Link) Heartbeat() error {
	return protocol.WriteFrame(l.conn, protocol.TypeHeartbeat, nil)
}

// RunReadLoop blocks, reading SERVER_FRAME messages and feeding them to
// the rollback controller, until the connection closes or onFrame returns
// false. It requests missing frames via FRAME_LOSS whenever the
// classifier reports a gap.
func (l *Link) RunReadLoop(onFrame func(rollback.Classification) bool) error {
	for {
		msgType, payload, err := protocol.ReadFrame(l.conn)
		if err != nil {
			return err
		}
		switch msgType {
		case protocol.TypeServerFrame:
			sf, err := protocol.DecodeServerFrame(payload)
			if err != nil {
				continue
			}
			inputs := make([]simulation.FrameInput, len(sf.FrameDatas))
			for i, fd := range sf.FrameDatas {
				inputs[i] = simulation.FrameInput{
					PlayerID:  fd.PlayerID,
					Direction: DirectionVector(fd.Direction),
					Actions:   simulation.ActionFlags(fd.Actions),
				}
			}
			class, err := l.Controller.OnServerFrame(sf.FrameNumber, inputs)
			if err != nil {
				return fmt.Errorf("client: unrecoverable divergence: %w", err)
			}
			if class.Label == rollback.NoPredictLost || class.Label == rollback.PredictLost {
				if err := l.requestFrameLoss(class.MissingFromInc, class.MissingToInc); err != nil {
					return err
				}
			}
			if onFrame != nil && !onFrame(class) {
				return nil
			}

		case protocol.TypeGameStart, protocol.TypeConnect:
			// Already consumed during handshake; a server that resends
			// these mid-session is ignored rather than treated as fatal.

		default:
			// Unknown/irrelevant types are dropped; see §7.
		}
	}
}

func (l *Link) requestFrameLoss(from, to uint64) error {
	payload := protocol.EncodeFrameLoss(protocol.FrameLoss{FromFrame: from, ToFrame: to})
	return protocol.WriteFrame(l.conn, protocol.TypeFrameLoss, payload)
}

// Close sends DISCONNECT and closes the underlying socket.
func (l *Link) Close() error {
	_ = protocol.WriteFrame(l.conn, protocol.TypeDisconnect, nil)
	return l.conn.Close()
}

// SetDeadline forwards to the underlying connection, for callers that want
// to bound RunReadLoop's blocking read (e.g. to interleave Heartbeat
// sends on an idle link).
func (l *Link) SetDeadline(t time.Time) error { return l.conn.SetDeadline(t) }
