package calendar

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"healthfirst/internal/domain"
)

// GridKey identifies a built grid. Version is the slot store's mutation
// counter, so any write makes older entries unreachable and they age out.
// Today is part of the key because cells flag the current date.
type GridKey struct {
	Date    string
	View    domain.ViewMode
	Version uint64
	Today   string
}

type GridCache struct {
	cache *lru.Cache[GridKey, domain.Grid]
}

func NewGridCache(size int) (*GridCache, error) {
	cache, err := lru.New[GridKey, domain.Grid](size)
	if err != nil {
		return nil, err
	}
	return &GridCache{cache: cache}, nil
}

func (c *GridCache) Get(key GridKey) (domain.Grid, bool) {
	if c == nil {
		return domain.Grid{}, false
	}
	return c.cache.Get(key)
}

func (c *GridCache) Add(key GridKey, grid domain.Grid) {
	if c == nil {
		return
	}
	c.cache.Add(key, grid)
}

func (c *GridCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
