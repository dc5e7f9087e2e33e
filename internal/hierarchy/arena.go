package hierarchy

import (
	"sync"

	"trove-sync-go/internal/db"
)

// arena is a reference-counted registry of remote subscriptions keyed by
// vault id. The count must be exact: a leaked retain prevents teardown, a
// premature release drops live data for another consumer.
type arena struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	count  int
	cancel db.Unsubscribe
}

func newArena() *arena {
	return &arena{subs: make(map[string]*subscription)}
}

// retain increments the count for key, invoking open only on the 0 -> 1
// transition. If open fails the count stays at zero.
func (a *arena) retain(key string, open func() (db.Unsubscribe, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sub, ok := a.subs[key]; ok {
		sub.count++
		return nil
	}
	cancel, err := open()
	if err != nil {
		return err
	}
	a.subs[key] = &subscription{count: 1, cancel: cancel}
	return nil
}

// release decrements the count for key, cancelling the subscription on the
// 1 -> 0 transition. Returns false if the key was not retained.
func (a *arena) release(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	sub, ok := a.subs[key]
	if !ok {
		return false
	}
	sub.count--
	if sub.count == 0 {
		delete(a.subs, key)
		sub.cancel()
	}
	return true
}
