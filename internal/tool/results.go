package tool

import "sync"

// ResultSet keeps the most recent result per tool name for one invocation.
type ResultSet struct {
	mu     sync.RWMutex
	byName map[string]*Result
}

func NewResultSet() *ResultSet {
	return &ResultSet{byName: make(map[string]*Result)}
}

// Record stores r under name, replacing any earlier result.
func (s *ResultSet) Record(name string, r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = r
}

func (s *ResultSet) Get(name string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byName[name]
	return r, ok
}

func (s *ResultSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// Map returns the decoded payloads keyed by tool name.
func (s *ResultSet) Map() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any, len(s.byName))
	for name, r := range s.byName {
		out[name] = r.Data
	}
	return out
}
