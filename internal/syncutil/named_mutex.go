// Package syncutil provides striped locking so unrelated object hashes
// don't serialize on one global mutex during concurrent reads/writes.
package syncutil

import (
	"sync"

	"github.com/gogf/gf/encoding/ghash"
)

// NamedMutex hashes an arbitrary []byte key down to one of a fixed
// number of stripes, each its own RWMutex. Distinct keys may land on
// the same stripe and block each other; that's the accepted tradeoff
// for not allocating one mutex per key.
type NamedMutex struct {
	stripes []sync.RWMutex
	count   uint32
}

// NewNamedMutex allocates a NamedMutex with the given number of
// stripes, clamped to a minimum of 2. A prime stripe count spreads
// hash collisions more evenly.
func NewNamedMutex(stripeCount uint32) *NamedMutex {
	if stripeCount < 2 {
		stripeCount = 2
	}
	return &NamedMutex{
		count:   stripeCount,
		stripes: make([]sync.RWMutex, stripeCount),
	}
}

func (mu *NamedMutex) stripe(key []byte) *sync.RWMutex {
	return &mu.stripes[ghash.SDBMHash(key)%mu.count]
}

// Lock acquires the stripe for key, blocking until it's available.
func (mu *NamedMutex) Lock(key []byte) { mu.stripe(key).Lock() }

// Unlock releases the stripe for key. It panics if that stripe isn't
// currently write-locked.
func (mu *NamedMutex) Unlock(key []byte) { mu.stripe(key).Unlock() }

// RLock acquires the stripe for key for reading. As with sync.RWMutex,
// a pending Lock call on the same stripe blocks new RLock callers.
func (mu *NamedMutex) RLock(key []byte) { mu.stripe(key).RLock() }

// RUnlock releases one reader's hold on key's stripe.
func (mu *NamedMutex) RUnlock(key []byte) { mu.stripe(key).RUnlock() }
