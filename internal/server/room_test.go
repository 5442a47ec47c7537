package server

import (
	"net"
	"testing"
	"time"

	"github.com/fight-club/lockstep/internal/protocol"
)

func pipeConn(t *testing.T) (*conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return newConn(a), b
}

func TestRoomJoinStartsOnlyWhenFull(t *testing.T) {
	r := newRoom(1, 2, 50*time.Millisecond)
	c1, _ := pipeConn(t)
	c1.playerID = 1
	r.join(c1)

	if r.status != statusWaiting {
		t.Fatalf("room should still be waiting with 1/2 players")
	}
}

func TestRoomAdvanceIncrementsFrameNumber(t *testing.T) {
	r := newRoom(1, 1, 50*time.Millisecond)
	r.status = statusPlaying

	r.acceptInput(protocol.FrameData{PlayerID: 1, FrameNumber: 1})
	r.advance()
	if r.frameNumber != 1 {
		t.Fatalf("expected frame_number 1, got %d", r.frameNumber)
	}
	sf, ok := r.history[1]
	if !ok {
		t.Fatal("expected frame 1 to be recorded in history")
	}
	if len(sf.FrameDatas) != 1 {
		t.Fatalf("expected 1 buffered input in frame 1, got %d", len(sf.FrameDatas))
	}

	r.advance()
	if r.frameNumber != 2 {
		t.Fatalf("expected frame_number 2, got %d", r.frameNumber)
	}
	if len(r.history[2].FrameDatas) != 0 {
		t.Fatal("expected empty input set for a tick with no buffered FrameData")
	}
}

func TestRoomAcceptInputDroppedWhileWaiting(t *testing.T) {
	r := newRoom(1, 2, 50*time.Millisecond)
	r.acceptInput(protocol.FrameData{PlayerID: 1})
	if len(r.pending) != 0 {
		t.Fatal("FRAME_DATA received before playing must be dropped")
	}
}

func TestRoomLeaveRemovesFromOrder(t *testing.T) {
	r := newRoom(1, 2, 50*time.Millisecond)
	c1, _ := pipeConn(t)
	c1.playerID = 1
	c2, _ := pipeConn(t)
	c2.playerID = 2
	r.join(c1)
	r.join(c2)

	r.leave(1)
	if len(r.order) != 1 || r.order[0] != 2 {
		t.Fatalf("expected order=[2], got %v", r.order)
	}
}
