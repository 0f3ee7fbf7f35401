package service

import (
	"context"
	"sync"
)

// CartLocks serializes cart work per session. A holder keeps its session's
// lock from loading the cart until the write of its changes has landed, so
// no request saves a copy of the cart that another request has replaced.
type CartLocks struct {
	mu    sync.Mutex
	locks map[string]*cartLock
}

type cartLock struct {
	sem  chan struct{}
	refs int
	// bumped each time an order empties the cart
	generation uint64
}

func NewCartLocks() *CartLocks {
	return &CartLocks{locks: make(map[string]*cartLock)}
}

// Acquire waits for the session's lock. If the lock is held, contended is
// asked first and its error is returned instead of waiting.
func (l *CartLocks) Acquire(ctx context.Context, sessionID string, contended func() error) (*CartLease, error) {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &cartLock{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = lock
	}
	lock.refs++
	lease := &CartLease{locks: l, sessionID: sessionID, lock: lock, seen: lock.generation}
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
		return lease, nil
	default:
	}

	if contended != nil {
		if err := contended(); err != nil {
			l.unref(sessionID, lock)
			return nil, err
		}
	}

	select {
	case lock.sem <- struct{}{}:
		return lease, nil
	case <-ctx.Done():
		l.unref(sessionID, lock)
		return nil, ctx.Err()
	}
}

func (l *CartLocks) unref(sessionID string, lock *cartLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, sessionID)
	}
}

// CartLease is a held session lock.
type CartLease struct {
	locks     *CartLocks
	sessionID string
	lock      *cartLock
	seen      uint64
	once      sync.Once
}

// Stale reports whether an order emptied the cart while this lease was
// waiting. A cart record the request carried in with it is then out of date.
func (c *CartLease) Stale() bool {
	c.locks.mu.Lock()
	defer c.locks.mu.Unlock()

	return c.lock.generation != c.seen
}

// OrderPlaced marks the cart as emptied by an order. Leases still waiting
// for the lock become stale.
func (c *CartLease) OrderPlaced() {
	c.locks.mu.Lock()
	defer c.locks.mu.Unlock()

	c.lock.generation++
	c.seen = c.lock.generation
}

// Release gives the lock up. Only the first call does anything.
func (c *CartLease) Release() {
	c.once.Do(func() {
		<-c.lock.sem
		c.locks.unref(c.sessionID, c.lock)
	})
}
