package imageloader

import (
	"github.com/yt2ig/yt2ig/generic"
	"github.com/yt2ig/yt2ig/internal/sync_"
)

// Cache maps resource URLs to complete downloaded bodies. It is safe for concurrent use, and the first value stored
// for a key is kept. Entries are never evicted.
type Cache struct {
	entries *sync_.RWMutexed[map[string][]byte]
}

func NewCache() *Cache {
	return &Cache{entries: sync_.NewRWMutexed(make(map[string][]byte))}
}

func (c *Cache) Get(key string) generic.Option[[]byte] {
	res := generic.None[[]byte]()
	_ = c.entries.RLocked(func(entries *map[string][]byte) error {
		if value, ok := (*entries)[key]; ok {
			res = generic.Some(value)
		}
		return nil
	})
	return res
}

// PutIfAbsent stores value unless key is already present, and returns whichever value is now stored.
func (c *Cache) PutIfAbsent(key string, value []byte) (stored []byte) {
	_ = c.entries.Locked(func(entries *map[string][]byte) error {
		if existing, ok := (*entries)[key]; ok {
			stored = existing
			return nil
		}
		(*entries)[key] = value
		stored = value
		return nil
	})
	return stored
}

func (c *Cache) Len() int {
	var n int
	_ = c.entries.RLocked(func(entries *map[string][]byte) error {
		n = len(*entries)
		return nil
	})
	return n
}
