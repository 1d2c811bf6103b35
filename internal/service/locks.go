package service

import "sync"

// payeeLocks serializes payout attempts per payee in this process, so the
// external rail window (begin -> rail call -> finalize) cannot interleave
// for the same payee. The store's transactional guards still hold on their
// own; this lock just turns a lost race into waiting instead of an error.
type payeeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPayeeLocks() *payeeLocks {
	return &payeeLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for payeeID, creating it on first use, and
// returns the unlock function.
func (p *payeeLocks) Lock(payeeID string) func() {
	p.mu.Lock()
	lock, ok := p.locks[payeeID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[payeeID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
