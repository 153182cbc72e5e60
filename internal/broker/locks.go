package broker

import (
	"sync"

	id "pinksync/pkg/domain"
)

// appLocks hands out one mutex per application ID. Submissions for different
// applications proceed in parallel; submissions for the same application
// serialize so counter reads and writes interleave atomically.
type appLocks struct {
	mu    sync.Mutex
	locks map[id.AppID]*sync.Mutex
}

func (a *appLocks) lock(appID id.AppID) (unlock func()) {
	a.mu.Lock()
	if a.locks == nil {
		a.locks = make(map[id.AppID]*sync.Mutex)
	}
	l, ok := a.locks[appID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[appID] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}
