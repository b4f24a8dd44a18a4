package room

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
)

// entry is one room plus its locks.
type entry struct {
	cycle sync.Mutex

	mu   sync.RWMutex
	room *Room
}

// Store owns every room record.
//
// All public methods are thread-safe.
type Store struct {
	mu    sync.RWMutex
	rooms map[ID]*entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rooms: make(map[ID]*entry)}
}

func (s *Store) lookup(id ID) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[id]
	return e, ok
}

func (s *Store) getOrCreate(id ID) *entry {
	if e, ok := s.lookup(id); ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.rooms[id]; ok {
		return e
	}
	e := &entry{room: newRoom(id)}
	s.rooms[id] = e
	return e
}

// Lock acquires the room's cycle lock, creating the room if it is new, and
// returns the function that releases it. Callers hold it for a whole
// read-decide-actuate cycle.
//
// Example:
//
//	unlock := store.Lock(id)
//	defer unlock()
func (s *Store) Lock(id ID) (unlock func()) {
	e := s.getOrCreate(id)
	e.cycle.Lock()
	return e.cycle.Unlock
}

// LockExisting is Lock for rooms that must already exist.
func (s *Store) LockExisting(id ID) (unlock func(), err error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	e.cycle.Lock()
	return e.cycle.Unlock, nil
}

// UpsertReading stores the latest value of one pollutant, creating the room
// if needed, and returns the updated snapshot. Other pollutants keep their
// previous values.
func (s *Store) UpsertReading(id ID, p aqi.Pollutant, value float64, at time.Time) Room {
	return s.UpsertReadings(id, map[aqi.Pollutant]float64{p: value}, at)
}

// UpsertReadings stores several pollutant values observed together.
func (s *Store) UpsertReadings(id ID, values map[aqi.Pollutant]float64, at time.Time) Room {
	e := s.getOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	for p, v := range values {
		e.room.Latest[p] = v
	}
	if at.After(e.room.ReadingAt) {
		e.room.ReadingAt = at
	}
	return e.room.clone()
}

// Get returns a snapshot of the room.
func (s *Store) Get(id ID) (Room, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Room{}, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.room.clone(), nil
}

// SetActuatorState records a state the actuator has confirmed.
// It must only be called after the actuator accepted the command.
func (s *Store) SetActuatorState(id ID, a Actuator, st State) error {
	if !a.Accepts(st) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidState, st, a)
	}
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if a == Ventilation {
		e.room.Ventilation = st
	} else {
		e.room.Window = st
	}
	return nil
}

// SetMetadata stores registry data for the room and marks it resolved.
func (s *Store) SetMetadata(id ID, hours OpeningHours, endpoint string) error {
	if err := hours.Validate(); err != nil {
		return err
	}
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.room.Hours = hours
	e.room.Endpoint = endpoint
	e.room.Resolved = true
	return nil
}

// IDs returns every known room id, sorted.
func (s *Store) IDs() []ID {
	s.mu.RLock()
	ids := make([]ID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// List returns snapshots of every room, sorted by id.
func (s *Store) List() []Room {
	ids := s.IDs()
	rooms := make([]Room, 0, len(ids))
	for _, id := range ids {
		if r, err := s.Get(id); err == nil {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// Len returns the number of known rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
