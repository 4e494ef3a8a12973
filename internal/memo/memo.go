// Package memo collapses repeated requests for the same key into one
// computation and remembers the completed result.
package memo

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/akara/rajaongkir-adapter/internal/cache"
)

// Memo runs the work for a key at most once while its result is retained.
// Concurrent callers on the same key wait for the in-flight call and share its
// result. Failed calls, and calls whose result is flagged not to keep, are not
// retained.
type Memo struct {
	group singleflight.Group
	done  *cache.TTL[[]byte]
}

func New() *Memo {
	return &Memo{done: cache.NewTTL[[]byte](time.Hour)}
}

// Do returns the retained result for key or runs fn. fn reports whether its
// result may be kept; kept results live for ttl. hit is true when the result
// came from the memo or from another caller's in-flight call.
func (m *Memo) Do(key string, ttl time.Duration, fn func() (value []byte, keep bool, err error)) (value []byte, hit bool, err error) {
	if v, ok := m.done.Get(key); ok {
		return v, true, nil
	}

	ran := false
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.done.Get(key); ok {
			return v, nil
		}
		ran = true
		v, keep, err := fn()
		if err != nil {
			return nil, err
		}
		if keep {
			m.done.PutFor(key, v, ttl)
		}
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	b, _ := v.([]byte)
	return b, !ran, nil
}

// Forget drops a retained result.
func (m *Memo) Forget(key string) {
	m.done.Bust(key)
	m.group.Forget(key)
}

// Len reports how many results are retained.
func (m *Memo) Len() int {
	return m.done.Len()
}

// StartCleaner drops expired results until stop is closed.
func (m *Memo) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	m.done.StartCleaner(interval, stop)
}
