// Command lockstep-server runs the authoritative room server: it accepts
// clients over KCP and TCP, assigns them to rooms, and broadcasts
// ServerFrame at the configured tick rate (§4.9).
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fight-club/lockstep/internal/config"
	"github.com/fight-club/lockstep/internal/server"
)

func main() {
	log.Println("==================================")
	log.Println(" LOCKSTEP ROOM SERVER")
	log.Println("==================================")

	appCfg := config.Load()
	srvCfg := appCfg.Server

	srv := server.New(srvCfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("server: failed to start: %v", err)
	}

	go startMetricsServer(srvCfg.MetricsAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("server: shutting down")
	srv.Stop()
}

// startMetricsServer exposes Prometheus metrics on a localhost-only
// address; debug endpoints are never bound externally.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	log.Printf("server: metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("server: metrics server error: %v", err)
	}
}
