// Package tests holds cross-package integration scenarios for the
// lockstep core that don't fit naturally inside a single package's
// _test.go file: plain testing.T, no external harness.
package tests

import (
	"testing"
	"time"

	"github.com/fight-club/lockstep/internal/client"
	"github.com/fight-club/lockstep/internal/config"
	"github.com/fight-club/lockstep/internal/protocol"
	"github.com/fight-club/lockstep/internal/rollback"
	"github.com/fight-club/lockstep/internal/server"
	"github.com/fight-club/lockstep/internal/simulation"
)

// startTestServer boots a room server on OS-assigned ports with a
// single-player room so GAME_START fires as soon as one client joins.
func startTestServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := config.DefaultServer()
	cfg.KCPAddr = "127.0.0.1:0"
	cfg.TCPAddr = "127.0.0.1:0"
	cfg.MaxPlayersPerRoom = 1
	cfg.TickRateHz = 20

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		t.Fatalf("server.Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// TestClientServerHandshakeAndFrameFlow exercises the full stack end to
// end: a client dials over TCP, completes CONNECT/GAME_START, predicts a
// few frames, and observes the room's ticker classify them as
// NoPredict-OK/Predict-OK since nothing else in the (single-player) room
// ever disagrees with the client's own prediction.
func TestClientServerHandshakeAndFrameFlow(t *testing.T) {
	srv := startTestServer(t)

	cfg := simulation.DefaultConfig()
	link, err := client.Dial("tcp", srv.TCPAddr(), "alice", cfg, 0)
	if err != nil {
		t.Fatalf("client.Dial: %v", err)
	}
	defer link.Close()

	if link.PlayerID() == 0 {
		t.Fatal("expected a nonzero assigned player_id")
	}

	done := make(chan struct{})
	var labels []rollback.Label
	go func() {
		_ = link.RunReadLoop(func(c rollback.Classification) bool {
			labels = append(labels, c.Label)
			return len(labels) < 3
		})
		close(done)
	}()

	for i := 0; i < 3; i++ {
		if _, err := link.Predict(protocol.DirectionNone, 0); err != nil {
			t.Fatalf("Predict: %v", err)
		}
		time.Sleep(60 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ServerFrame classifications")
	}

	if len(labels) == 0 {
		t.Fatal("expected at least one classified ServerFrame")
	}
	for _, l := range labels {
		if l == rollback.PredictMismatch {
			t.Fatalf("unexpected Predict-Mismatch in a single-client room: %v", labels)
		}
	}
}

// TestFrameNumberMonotonicity is property 9: a room's broadcast
// frame_number strictly increases starting at 1.
func TestFrameNumberMonotonicity(t *testing.T) {
	srv := startTestServer(t)

	cfg := simulation.DefaultConfig()
	link, err := client.Dial("tcp", srv.TCPAddr(), "bob", cfg, 0)
	if err != nil {
		t.Fatalf("client.Dial: %v", err)
	}
	defer link.Close()

	var lastFrame uint64
	count := 0
	err = link.RunReadLoop(func(c rollback.Classification) bool {
		count++
		frame := link.Controller.ConfirmedFrame()
		if frame != 0 && frame <= lastFrame {
			t.Errorf("frame_number did not strictly increase: %d after %d", frame, lastFrame)
		}
		lastFrame = frame
		return count < 5
	})
	if err != nil && count < 5 {
		t.Fatalf("RunReadLoop ended early: %v", err)
	}
	if lastFrame == 0 {
		t.Fatal("expected confirmed_frame to have advanced past 0")
	}
}
