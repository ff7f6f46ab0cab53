package services

import (
	"context"
	"sort"
	"sync"
)

// accountLocker hands out in-process per-account mutexes. Locks are always
// taken in ascending account id order, and always before a unit of work
// starts, so two writers touching the same accounts cannot deadlock.
type accountLocker struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

type heldLocksKey struct{}

func newAccountLocker() *accountLocker {
	return &accountLocker{locks: map[string]*accountLock{}}
}

// Lock acquires every account in ascending order and returns a context that
// records them as held, plus the release function.
func (l *accountLocker) Lock(ctx context.Context, accountIDs []string) (context.Context, func()) {
	ids := distinctSorted(accountIDs)
	held := heldLocks(ctx)

	acquired := make([]string, 0, len(ids))
	for _, id := range ids {
		if held[id] {
			continue
		}
		l.ref(id).mu.Lock()
		acquired = append(acquired, id)
	}

	next := make(map[string]bool, len(held)+len(acquired))
	for id := range held {
		next[id] = true
	}
	for _, id := range acquired {
		next[id] = true
	}

	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			l.unref(acquired[i])
		}
	}
	return context.WithValue(ctx, heldLocksKey{}, next), release
}

func (l *accountLocker) ref(id string) *accountLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &accountLock{}
		l.locks[id] = lock
	}
	lock.refs++
	return lock
}

func (l *accountLocker) unref(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock := l.locks[id]
	lock.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, id)
	}
}

func heldLocks(ctx context.Context) map[string]bool {
	held, _ := ctx.Value(heldLocksKey{}).(map[string]bool)
	return held
}

// holdsAll reports whether ctx already carries the lock of every account.
func holdsAll(ctx context.Context, accountIDs []string) bool {
	held := heldLocks(ctx)
	for _, id := range accountIDs {
		if !held[id] {
			return false
		}
	}
	return true
}

func distinctSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
