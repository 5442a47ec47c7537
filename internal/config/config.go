// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// =============================================================================
// PHYSICS CONFIGURATION
// =============================================================================

// PhysicsConfig holds the integrator and solver settings.
type PhysicsConfig struct {
	GravityX   float64
	GravityY   float64
	SubSteps   int // Integration substeps per tick
	Iterations int // Solver iterations per substep
}

// DefaultPhysics returns the default physics configuration.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		GravityX:   0,
		GravityY:   0,
		SubSteps:   4,
		Iterations: 4,
	}
}

// PhysicsFromEnv returns physics configuration with environment variable overrides.
func PhysicsFromEnv() PhysicsConfig {
	cfg := DefaultPhysics()

	if v, ok := getEnvFloatOK("PHYSICS_GRAVITY_X"); ok {
		cfg.GravityX = v
	}
	if v, ok := getEnvFloatOK("PHYSICS_GRAVITY_Y"); ok {
		cfg.GravityY = v
	}
	if s := getEnvInt("PHYSICS_SUBSTEPS", 0); s > 0 {
		cfg.SubSteps = s
	}
	if it := getEnvInt("PHYSICS_ITERATIONS", 0); it > 0 {
		cfg.Iterations = it
	}

	return cfg
}

// =============================================================================
// SPATIAL INDEX CONFIGURATION
// =============================================================================

// SpatialConfig holds the quadtree/BVH tuning settings.
type SpatialConfig struct {
	QuadtreeMaxObjectsPerNode int
	QuadtreeMaxDepth          int
	BVHLeafCapacity           int
	BVHMaxDepth               int
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		QuadtreeMaxObjectsPerNode: 8,
		QuadtreeMaxDepth:          8,
		BVHLeafCapacity:           4,
		BVHMaxDepth:               12,
	}
}

// SpatialFromEnv returns spatial configuration with environment variable overrides.
func SpatialFromEnv() SpatialConfig {
	cfg := DefaultSpatial()

	if v := getEnvInt("QUADTREE_MAX_OBJECTS", 0); v > 0 {
		cfg.QuadtreeMaxObjectsPerNode = v
	}
	if v := getEnvInt("QUADTREE_MAX_DEPTH", 0); v > 0 {
		cfg.QuadtreeMaxDepth = v
	}
	if v := getEnvInt("BVH_LEAF_CAPACITY", 0); v > 0 {
		cfg.BVHLeafCapacity = v
	}
	if v := getEnvInt("BVH_MAX_DEPTH", 0); v > 0 {
		cfg.BVHMaxDepth = v
	}

	return cfg
}

// =============================================================================
// ROLLBACK CONFIGURATION
// =============================================================================

// RollbackConfig holds the client-side prediction and reconciliation settings.
type RollbackConfig struct {
	MaxSnapshots int // Snapshot ring buffer size, bounds recoverable rollback depth
}

// DefaultRollback returns the default rollback configuration.
func DefaultRollback() RollbackConfig {
	return RollbackConfig{
		MaxSnapshots: 180, // 9s of history at 20Hz
	}
}

// RollbackFromEnv returns rollback configuration with environment variable overrides.
func RollbackFromEnv() RollbackConfig {
	cfg := DefaultRollback()

	if v := getEnvInt("ROLLBACK_MAX_SNAPSHOTS", 0); v > 0 {
		cfg.MaxSnapshots = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds room-server networking and capacity settings.
type ServerConfig struct {
	KCPAddr           string // listen address for the KCP (reliable-UDP) endpoint
	TCPAddr           string // listen address for the TCP equivalent endpoint
	MetricsAddr       string // Prometheus /metrics listen address, localhost only by default
	MaxPlayersPerRoom int
	TickRateHz        int
	HeartbeatTimeout  int // seconds of silence before a connection is dropped
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		KCPAddr:           ":7777",
		TCPAddr:           ":7778",
		MetricsAddr:       "127.0.0.1:6060",
		MaxPlayersPerRoom: 8,
		TickRateHz:        20,
		HeartbeatTimeout:  30,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if v := os.Getenv("KCP_ADDR"); v != "" {
		cfg.KCPAddr = v
	}
	if v := os.Getenv("TCP_ADDR"); v != "" {
		cfg.TCPAddr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := getEnvInt("MAX_PLAYERS_PER_ROOM", 0); v > 0 {
		cfg.MaxPlayersPerRoom = v
	}
	if v := getEnvInt("TICK_RATE_HZ", 0); v > 0 {
		cfg.TickRateHz = v
	}
	if v := getEnvInt("HEARTBEAT_TIMEOUT", 0); v > 0 {
		cfg.HeartbeatTimeout = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Physics  PhysicsConfig
	Spatial  SpatialConfig
	Rollback RollbackConfig
	Server   ServerConfig
}

// Load reads a .env file if present (a missing file is not an error) and
// returns the complete configuration with environment overrides applied.
func Load() AppConfig {
	_ = godotenv.Load()

	return AppConfig{
		Physics:  PhysicsFromEnv(),
		Spatial:  SpatialFromEnv(),
		Rollback: RollbackFromEnv(),
		Server:   ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOK(key string) (float64, bool) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
