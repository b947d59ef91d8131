package wlan

import (
	"sync"

	"github.com/NVIDIA/wlancore/internal/cmn/debug"
)

// IfaceStore is the mutable catalogue of client and AP containers.
// Every mutation happens on the event-loop goroutine; the mutex below
// exists only so read-only probes (GetScanProxy, HasIdleIface) issued
// from request handlers running inside the same goroutine never need
// to worry about incidental concurrent access from tests or the CLI.
type IfaceStore struct {
	mu      sync.Mutex
	clients map[IfaceID]*ClientInterface
	aps     map[IfaceID]*ApInterface
	idle    map[IfaceID]struct{}
}

func NewIfaceStore() *IfaceStore {
	return &IfaceStore{
		clients: make(map[IfaceID]*ClientInterface),
		aps:     make(map[IfaceID]*ApInterface),
		idle:    make(map[IfaceID]struct{}),
	}
}

// AddClient registers a new client interface. Panics (debug builds
// only) if id already tracked; the union of client/AP ids must stay
// disjoint.
func (s *IfaceStore) AddClient(c *ClientInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debug.Assert(!s.hasLocked(c.ID), "duplicate iface id", c.ID)
	s.clients[c.ID] = c
}

func (s *IfaceStore) AddAp(a *ApInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debug.Assert(!s.hasLocked(a.ID), "duplicate iface id", a.ID)
	s.aps[a.ID] = a
}

func (s *IfaceStore) hasLocked(id IfaceID) bool {
	if _, ok := s.clients[id]; ok {
		return true
	}
	_, ok := s.aps[id]
	return ok
}

func (s *IfaceStore) Client(id IfaceID) (*ClientInterface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	return c, ok
}

func (s *IfaceStore) Ap(id IfaceID) (*ApInterface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.aps[id]
	return a, ok
}

func (s *IfaceStore) RemoveClient(id IfaceID) (*ClientInterface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
		delete(s.idle, id)
	}
	return c, ok
}

func (s *IfaceStore) RemoveAp(id IfaceID) (*ApInterface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.aps[id]
	if ok {
		delete(s.aps, id)
	}
	return a, ok
}

func (s *IfaceStore) AllClients() []*ClientInterface {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ClientInterface, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *IfaceStore) AllAps() []*ApInterface {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ApInterface, 0, len(s.aps))
	for _, a := range s.aps {
		out = append(out, a)
	}
	return out
}

func (s *IfaceStore) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RecordIdle marks id as having no outstanding connection attempt.
func (s *IfaceStore) RecordIdle(id IfaceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idle[id] = struct{}{}
}

func (s *IfaceStore) ClearIdle(id IfaceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.idle, id)
}

func (s *IfaceStore) HasIdleIface() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idle) > 0
}

func (s *IfaceStore) IdleClients() []IfaceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IfaceID, 0, len(s.idle))
	for id := range s.idle {
		out = append(out, id)
	}
	return out
}

func (s *IfaceStore) HasWpa3Iface() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.SecuritySupport.Wpa3Supported {
			return true
		}
	}
	return false
}
