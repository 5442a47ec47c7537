// Command lockstep-client is a headless reference client: it dials a room
// server, predicts zero input every tick, and logs each classified
// ServerFrame. It exists to exercise the wire protocol and rollback
// controller end-to-end without a renderer; a real game client supplies
// its own input capture and rendering and links against internal/client
// and internal/simulation directly.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/fight-club/lockstep/internal/client"
	"github.com/fight-club/lockstep/internal/config"
	"github.com/fight-club/lockstep/internal/protocol"
	"github.com/fight-club/lockstep/internal/rollback"
	"github.com/fight-club/lockstep/internal/simulation"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7778", "room server address")
	network := flag.String("network", "tcp", "tcp or kcp")
	name := flag.String("name", "player", "player name")
	flag.Parse()

	appCfg := config.Load()
	cfg := simulation.FromAppConfig(appCfg)
	link, err := client.Dial(*network, *addr, *name, cfg, appCfg.Rollback.MaxSnapshots)
	if err != nil {
		log.Fatalf("client: dial failed: %v", err)
	}
	defer link.Close()

	log.Printf("client: connected as player %d", link.PlayerID())

	go func() {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / 20))
		defer ticker.Stop()
		for range ticker.C {
			if _, err := link.Predict(protocol.DirectionNone, 0); err != nil {
				log.Printf("client: predict send failed: %v", err)
				return
			}
		}
	}()

	err = link.RunReadLoop(func(c rollback.Classification) bool {
		log.Printf("client: frame classified as %s (confirmed=%d predicted=%d)",
			c.Label, link.Controller.ConfirmedFrame(), link.Controller.PredictedFrame())
		return true
	})
	if err != nil {
		log.Printf("client: read loop ended: %v", err)
	}
}
