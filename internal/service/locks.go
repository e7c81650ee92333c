package service

import "sync"

// groupLocks hands out one mutex per group id. Entries are dropped once no
// goroutine holds or waits on them.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	sync.Mutex
	refs int
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*groupLock)}
}

// lock blocks until the group's lock is held and returns its release func.
func (g *groupLocks) lock(groupID string) func() {
	g.mu.Lock()
	l, ok := g.locks[groupID]
	if !ok {
		l = &groupLock{}
		g.locks[groupID] = l
	}
	l.refs++
	g.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, groupID)
		}
		g.mu.Unlock()
	}
}

func (g *groupLocks) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
