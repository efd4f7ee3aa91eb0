package chat

import "sync"

// Directory maps room names to the connections currently in them.
//
// A connection is in at most one room. Rooms exist only while they have
// members: the entry is created by the first Join and dropped by the last
// Leave. Every method is atomic with respect to every other.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room -> set of connection ids
	where map[string]string              // connection id -> room
}

func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[string]map[string]struct{}),
		where: make(map[string]string),
	}
}

// Join puts connID into room, removing it from any other room first.
// Joining the room the connection is already in is a no-op.
func (d *Directory) Join(room, connID string) {
	if room == "" || connID == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.where[connID]
	if ok && current == room {
		return
	}
	if ok {
		d.removeLocked(current, connID)
	}

	members, ok := d.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		d.rooms[room] = members
	}
	members[connID] = struct{}{}
	d.where[connID] = room
}

// Leave removes connID from its room and returns that room's name. Unknown
// connections are ignored and yield "".
func (d *Directory) Leave(connID string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.where[connID]
	if !ok {
		return ""
	}
	d.removeLocked(room, connID)
	return room
}

func (d *Directory) removeLocked(room, connID string) {
	delete(d.where, connID)
	members := d.rooms[room]
	delete(members, connID)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
}

// MembersOf returns a snapshot of the connection ids in room.
func (d *Directory) MembersOf(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RoomOf returns the room connID is in, or "".
func (d *Directory) RoomOf(connID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.where[connID]
}

// RoomCount returns the number of non-empty rooms.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
