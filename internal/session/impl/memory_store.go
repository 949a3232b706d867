package impl

import (
	"sync"
)

// MemoryStore keeps the committed view and the request's pending writes in
// separate maps so tests can observe the Save boundary: reads see committed
// state plus this request's own buffered writes, other readers only see
// committed state.
type MemoryStore struct {
	sync.Mutex

	committed      map[string]string
	pendingSets    map[string]string
	pendingRemoves map[string]bool
}

func MakeMemoryStore() *MemoryStore {
	return &MemoryStore{
		committed:      make(map[string]string),
		pendingSets:    make(map[string]string),
		pendingRemoves: make(map[string]bool),
	}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.Lock()
	defer s.Unlock()
	if s.pendingRemoves[key] {
		return "", false, nil
	}
	if v, ok := s.pendingSets[key]; ok {
		return v, true, nil
	}
	v, ok := s.committed[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key string, value string) error {
	s.Lock()
	s.pendingSets[key] = value
	delete(s.pendingRemoves, key)
	s.Unlock()
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.Lock()
	s.pendingRemoves[key] = true
	delete(s.pendingSets, key)
	s.Unlock()
	return nil
}

func (s *MemoryStore) Save() error {
	s.Lock()
	for k, v := range s.pendingSets {
		s.committed[k] = v
	}
	for k := range s.pendingRemoves {
		delete(s.committed, k)
	}
	s.pendingSets = make(map[string]string)
	s.pendingRemoves = make(map[string]bool)
	s.Unlock()
	return nil
}

// Discard drops buffered writes without committing them. Tests use this to
// model a request dying before its flush.
func (s *MemoryStore) Discard() {
	s.Lock()
	s.pendingSets = make(map[string]string)
	s.pendingRemoves = make(map[string]bool)
	s.Unlock()
}
