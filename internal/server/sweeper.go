package server

import (
	"log"
	"time"
)

// sweepInterval is how often the heartbeat sweeper and the empty-room
// cleanup sweep run.
const sweepInterval = 10 * time.Second

// runSweeper disconnects clients idle beyond timeout and removes empty
// rooms, until stopCh closes.
func (reg *Registry) runSweeper(timeout time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			reg.sweepOnce(timeout)
		}
	}
}

func (reg *Registry) sweepOnce(timeout time.Duration) {
	for _, room := range reg.snapshotRooms() {
		stale := room.sweepIdle(timeout)
		for _, c := range stale {
			log.Printf("server: player %d idle beyond %s, disconnecting", c.playerID, timeout)
			c.Close()
		}
	}
	reg.sweepEmpty()
	connectionsActive.Set(float64(reg.connectionCount()))
}
