package server

import (
	"net"
	"testing"
	"time"
)

func TestRegistryAssignFirstFit(t *testing.T) {
	reg := NewRegistry(2, 50*time.Millisecond)

	a, _ := net.Pipe()
	defer a.Close()
	c1 := newConn(a)
	c1.playerID = 1
	room1 := reg.assign(c1)

	b, _ := net.Pipe()
	defer b.Close()
	c2 := newConn(b)
	c2.playerID = 2
	room2 := reg.assign(c2)

	if room1.id != room2.id {
		t.Fatalf("expected second player to join the same waiting room, got rooms %d and %d", room1.id, room2.id)
	}
}

func TestRegistryCreatesNewRoomWhenFull(t *testing.T) {
	reg := NewRegistry(1, 50*time.Millisecond)

	a, _ := net.Pipe()
	defer a.Close()
	c1 := newConn(a)
	c1.playerID = 1
	room1 := reg.assign(c1)

	b, _ := net.Pipe()
	defer b.Close()
	c2 := newConn(b)
	c2.playerID = 2
	room2 := reg.assign(c2)

	if room1.id == room2.id {
		t.Fatal("expected a new room once the first reached capacity")
	}
}

func TestRegistrySweepEmptyRemovesVacantRooms(t *testing.T) {
	reg := NewRegistry(1, 50*time.Millisecond)

	a, _ := net.Pipe()
	c1 := newConn(a)
	c1.playerID = 1
	room1 := reg.assign(c1)
	room1.leave(1)
	a.Close()

	reg.sweepEmpty()
	if reg.room(room1.id) != nil {
		t.Fatal("expected the empty room to be removed from the registry")
	}
}
