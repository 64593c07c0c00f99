package session

import (
	"context"
	"fmt"
	"sync"
)

// Snapshot is the observable part of a session.
type Snapshot struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// Publisher replaces the current snapshot and notifies subscribers. Only the holder of the
// Publisher returned by NewState can change the state.
type Publisher func(Snapshot)

// State is the in-memory session record shared by the guard, the request authorizer and any
// reactive consumer. Reads never block on I/O.
type State struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[int]chan Snapshot
	nextID  int
}

// NewState hydrates the state from the store once.
func NewState(ctx context.Context, store Store) (*State, Publisher, error) {
	token, ok, err := store.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, nil, fmt.Errorf("[NewState] read access token: %w", err)
	}
	username, _, err := store.Get(ctx, UsernameKey)
	if err != nil {
		return nil, nil, fmt.Errorf("[NewState] read username: %w", err)
	}

	s := &State{
		current: Snapshot{Authenticated: ok && token != "", Username: username},
		subs:    make(map[int]chan Snapshot),
	}
	return s, s.publish, nil
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated
}

func (s *State) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Username
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe returns a channel that immediately holds the current snapshot and then receives every
// change. A slow reader only loses intermediate values; the latest snapshot is always delivered.
// cancel closes the channel.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	ch <- s.current
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *State) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale value the subscriber has not read yet
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
