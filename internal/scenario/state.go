package scenario

import (
	"sort"
	"sync"
)

// Key names a value threaded from one step to later ones.
type Key string

// State is the explicit context object shared by the steps of one run.
// Steps run one at a time; the lock only guards readers such as observers.
type State struct {
	mu     sync.RWMutex
	values map[Key]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: make(map[Key]string)}
}

// Set stores v under k, replacing any previous value.
func (s *State) Set(k Key, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[k] = v
}

// Get returns the value stored under k. Empty values count as missing.
func (s *State) Get(k Key) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[k]
	return v, ok && v != ""
}

// Value returns the value under k, or "" when missing.
func (s *State) Value(k Key) string {
	v, _ := s.Get(k)
	return v
}

// Missing returns the keys from want that have no value, sorted.
func (s *State) Missing(want []Key) []Key {
	var missing []Key
	for _, k := range want {
		if _, ok := s.Get(k); !ok {
			missing = append(missing, k)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
