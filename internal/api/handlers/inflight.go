package handlers

import "sync"

// inflight tracks sessions with a running optimization.
type inflight struct {
	mu       sync.Mutex
	sessions map[string]struct{}
}

// acquire marks session busy; it reports false when a run is already active.
func (f *inflight) acquire(session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sessions == nil {
		f.sessions = make(map[string]struct{})
	}
	if _, busy := f.sessions[session]; busy {
		return false
	}
	f.sessions[session] = struct{}{}
	return true
}

func (f *inflight) release(session string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, session)
}
