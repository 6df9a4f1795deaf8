package driver

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/phuslu/log"

	"cmkit/internal/cmakecache"
)

// CacheDriver serves the CMakeCache.txt of one build directory. The file is
// re-read only when its size or modification time changes, so a reconfigure
// that rewrites the cache is picked up by the next call.
type CacheDriver struct {
	path   string
	logger *log.Logger

	mu      sync.Mutex
	cache   *cmakecache.Cache
	modTime time.Time
	size    int64
	loads   int
}

// NewCacheDriver creates a driver for the cache file at path. logger may be nil.
func NewCacheDriver(path string, logger *log.Logger) *CacheDriver {
	return &CacheDriver{path: path, logger: logger}
}

// CachePath returns the cache file the driver reads.
func (d *CacheDriver) CachePath() string {
	return d.path
}

// Cache returns the current snapshot, reloading it when the file changed.
func (d *CacheDriver) Cache(ctx context.Context) (*cmakecache.Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := os.Stat(d.path)
	if err != nil {
		return nil, fmt.Errorf("stat cache: %w", err)
	}
	if d.cache != nil && info.ModTime().Equal(d.modTime) && info.Size() == d.size {
		return d.cache, nil
	}

	cache, err := cmakecache.LoadFromPath(d.path)
	if err != nil {
		if d.logger != nil {
			d.logger.Error().Err(err).Str("path", d.path).Msg("cache load failed")
		}
		return nil, err
	}

	d.cache = cache
	d.modTime = info.ModTime()
	d.size = info.Size()
	d.loads++
	if d.logger != nil {
		d.logger.Info().Str("path", d.path).Int("entries", cache.Len()).Int("loads", d.loads).Msg("cache loaded")
	}
	return cache, nil
}
