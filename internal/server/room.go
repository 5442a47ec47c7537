package server

import (
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/fight-club/lockstep/internal/protocol"
)

// status is a room's lifecycle state per §4.9.
type status int

const (
	statusWaiting status = iota
	statusPlaying
)

// startDebounce is the short pause between a room filling up and the
// GAME_START broadcast, giving every member's CONNECT response time to
// land before frames start flowing.
const startDebounce = 250 * time.Millisecond

// frameHistoryLimit bounds how many past ServerFrames a room keeps around
// to serve FRAME_LOSS replays; older frames are evicted, mirroring the
// rollback controller's own snapshot eviction policy.
const frameHistoryLimit = 256

// Room is one authoritative game room: a fixed-order roster of clients, an
// input buffer drained once per tick, and the ticker goroutine that turns
// buffered inputs into broadcast ServerFrames.
//
// Concurrency: guarded by mu. The per-room ticker goroutine and every
// connection's read-loop goroutine contend only on this lock, and only for
// the brief critical sections below (§5).
type Room struct {
	mu sync.Mutex

	id         uint32
	maxPlayers int
	status     status

	clients map[uint32]*conn
	order   []uint32 // join order; order[0] is the host

	frameNumber uint64
	pending     []protocol.FrameData
	history     map[uint64]protocol.ServerFrame
	historyKeys []uint64

	seed int64

	tickInterval time.Duration
	stopCh       chan struct{}
	stopped      bool
}

func newRoom(id uint32, maxPlayers int, tickInterval time.Duration) *Room {
	return &Room{
		id:           id,
		maxPlayers:   maxPlayers,
		clients:      make(map[uint32]*conn),
		history:      make(map[uint64]protocol.ServerFrame),
		tickInterval: tickInterval,
		stopCh:       make(chan struct{}),
	}
}

func (r *Room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Room) isWaiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == statusWaiting
}

// join adds c to the roster. If the room is now full, it schedules the
// GAME_START transition after startDebounce.
func (r *Room) join(c *conn) {
	r.mu.Lock()
	c.roomID = r.id
	r.clients[c.playerID] = c
	r.order = append(r.order, c.playerID)
	full := len(r.clients) >= r.maxPlayers && r.status == statusWaiting
	r.mu.Unlock()

	if full {
		time.AfterFunc(startDebounce, r.tryStart)
	}
}

// tryStart transitions a still-full, still-waiting room to playing and
// broadcasts GAME_START with a freshly generated seed and the ordered
// player_ids — the sole source of simulation determinism for every member
// (§4.9).
func (r *Room) tryStart() {
	r.mu.Lock()
	if r.status != statusWaiting || len(r.clients) < r.maxPlayers {
		r.mu.Unlock()
		return
	}
	r.status = statusPlaying
	r.seed = rand.Int63()
	ids := append([]uint32(nil), r.order...)
	members := make([]*conn, 0, len(r.clients))
	for _, id := range ids {
		members = append(members, r.clients[id])
	}
	r.mu.Unlock()

	payload := protocol.EncodeGameStart(protocol.GameStart{
		RoomID:     r.id,
		RandomSeed: r.seed,
		PlayerIDs:  ids,
	})
	for _, m := range members {
		if err := m.Send(protocol.TypeGameStart, payload); err != nil {
			log.Printf("server: room %d: GAME_START send to player %d failed: %v", r.id, m.playerID, err)
		}
	}
	log.Printf("server: room %d started, seed=%d, players=%v", r.id, r.seed, ids)

	go r.runTicker()
}

// leave removes a client. If the departing client was the host (first in
// join order), the next-ordered client is promoted — promotion here is
// purely about order bookkeeping, since the protocol has no host-only
// authority beyond determining replacement order.
func (r *Room) leave(playerID uint32) {
	r.mu.Lock()
	delete(r.clients, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.stopIfEmptyLocked()
	r.mu.Unlock()
}

// stopIfEmptyLocked shuts the ticker down once the last client is gone.
// Must be called with mu held; idempotent so leave and the idle sweeper
// can't double-close the channel.
func (r *Room) stopIfEmptyLocked() {
	if len(r.clients) == 0 && !r.stopped {
		r.stopped = true
		close(r.stopCh)
	}
}

// acceptInput buffers one FRAME_DATA for the next tick. Dropped silently
// (with a metric) while the room isn't playing, per §4.9.
func (r *Room) acceptInput(fd protocol.FrameData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != statusPlaying {
		recordDropped("not_playing")
		return
	}
	r.pending = append(r.pending, fd)
}

// serveFrameLoss re-broadcasts the stored ServerFrame snapshots for
// [from, to] to the requesting client, per §4.9's FRAME_LOSS handling.
func (r *Room) serveFrameLoss(c *conn, from, to uint64) {
	r.mu.Lock()
	var frames []protocol.ServerFrame
	for f := from; f <= to; f++ {
		if sf, ok := r.history[f]; ok {
			frames = append(frames, sf)
		}
	}
	r.mu.Unlock()

	for _, sf := range frames {
		if err := c.Send(protocol.TypeServerFrame, protocol.EncodeServerFrame(sf)); err != nil {
			log.Printf("server: room %d: frame-loss replay to player %d failed: %v", r.id, c.playerID, err)
			return
		}
	}
}

// runTicker is the per-room fixed-tick broadcaster: every interval, drain
// the pending-input buffer, advance frame_number, and push a ServerFrame
// to every member. It exits when the room empties.
func (r *Room) runTicker() {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.advance()
		}
	}
}

func (r *Room) advance() {
	started := time.Now()
	r.mu.Lock()
	inputs := r.pending
	r.pending = nil
	r.frameNumber++
	frame := r.frameNumber

	sf := protocol.ServerFrame{
		FrameNumber: frame,
		Timestamp:   started.UnixNano(),
		FrameDatas:  inputs,
	}
	r.history[frame] = sf
	r.historyKeys = append(r.historyKeys, frame)
	for len(r.historyKeys) > frameHistoryLimit {
		delete(r.history, r.historyKeys[0])
		r.historyKeys = r.historyKeys[1:]
	}

	members := make([]*conn, 0, len(r.clients))
	for _, id := range r.order {
		if m, ok := r.clients[id]; ok {
			members = append(members, m)
		}
	}
	r.mu.Unlock()

	payload := protocol.EncodeServerFrame(sf)
	for _, m := range members {
		if err := m.Send(protocol.TypeServerFrame, payload); err != nil {
			log.Printf("server: room %d: broadcast to player %d failed: %v", r.id, m.playerID, err)
		}
	}
	recordTick(time.Since(started))
}

// sweepIdle disconnects and removes every client idle beyond timeout,
// returning their connections so the caller can close the underlying
// sockets outside the room lock.
func (r *Room) sweepIdle(timeout time.Duration) []*conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []*conn
	for id, c := range r.clients {
		if c.idleSince() > timeout {
			stale = append(stale, c)
			delete(r.clients, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].playerID < stale[j].playerID })
	remaining := r.order[:0:0]
	for _, id := range r.order {
		if _, ok := r.clients[id]; ok {
			remaining = append(remaining, id)
		}
	}
	r.order = remaining
	r.stopIfEmptyLocked()
	return stale
}
