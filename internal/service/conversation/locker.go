package conversation

import (
	"strconv"

	"github.com/moby/locker"
)

// keyedMutex serializes work per user id. The underlying locker drops a
// key once its last holder or waiter releases it.
type keyedMutex struct {
	l *locker.Locker
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{l: locker.New()}
}

// Lock blocks until the key is free and returns its unlock function.
func (k *keyedMutex) Lock(userID int64) (unlock func()) {
	key := strconv.FormatInt(userID, 10)
	k.l.Lock(key)
	return func() {
		_ = k.l.Unlock(key) // only fails for a key that is not held
	}
}
