package ledger

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes commands per (book, member email) pair so the
// at-most-one-open-loan invariant holds under concurrent requests from a
// single process. Cross-process callers rely on the record store's guarded
// writes instead.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for the key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}

	pairLock, ok := k.locks[key]
	if !ok {
		pairLock = &sync.Mutex{}
		k.locks[key] = pairLock
	}
	k.mu.Unlock()

	pairLock.Lock()

	return pairLock.Unlock
}

// pairKey builds the serialization key for a (book, member email) pair.
// Email is folded to lower case to match the store's lookup semantics.
func pairKey(bookID uuid.UUID, memberEmail string) string {
	return bookID.String() + "|" + strings.ToLower(memberEmail)
}
