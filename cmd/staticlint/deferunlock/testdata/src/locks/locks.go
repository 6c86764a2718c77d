package locks

import "sync"

type store struct {
	mu    sync.Mutex
	rw    sync.RWMutex
	items map[int]string
}

type embedded struct {
	sync.Mutex
	n int
}

type fakeLocker struct{}

func (fakeLocker) Lock()   {}
func (fakeLocker) Unlock() {}

func (s *store) good(k int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items[k]
}

func (s *store) goodRead(k int) string {
	s.rw.RLock()
	defer s.rw.RUnlock()

	return s.items[k]
}

func (e *embedded) goodEmbedded() {
	e.Lock()
	defer e.Unlock()

	e.n++
}

func (s *store) manualUnlock(k int) string {
	s.mu.Lock() // want `s.mu.Lock\(\) must be followed by defer s.mu.Unlock\(\)`
	v := s.items[k]
	s.mu.Unlock()

	return v
}

func (s *store) wrongPair(k int) string {
	s.rw.RLock() // want `s.rw.RLock\(\) must be followed by defer s.rw.RUnlock\(\)`
	defer s.rw.Unlock()

	return s.items[k]
}

func (s *store) wrongReceiver(other *store) {
	s.mu.Lock() // want `s.mu.Lock\(\) must be followed by defer s.mu.Unlock\(\)`
	defer other.mu.Unlock()
}

func (s *store) inSwitch(k int) {
	switch k {
	case 0:
		s.mu.Lock() // want `s.mu.Lock\(\) must be followed by defer s.mu.Unlock\(\)`
		s.items[k] = ""
		s.mu.Unlock()
	}
}

func notSync(f fakeLocker) {
	f.Lock()
	f.Unlock()
}

func inClosure(s *store) func() {
	return func() {
		s.mu.Lock() // want `s.mu.Lock\(\) must be followed by defer s.mu.Unlock\(\)`
		s.mu.Unlock()
	}
}
