package cache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DiskStore implements Store with one JSON file per entry under dir.
type DiskStore struct {
	dir string
	ttl time.Duration
	now Clock

	// Get/Put hold the read side so Clear sees a stable directory listing.
	mu sync.RWMutex
}

// NewDisk creates a disk store rooted at dir. A nil clock means time.Now.
func NewDisk(dir string, ttl time.Duration, now Clock) *DiskStore {
	if now == nil {
		now = time.Now
	}
	return &DiskStore{
		dir: dir,
		ttl: ttl,
		now: now,
	}
}

// Init ensures the cache directory exists.
func (d *DiskStore) Init() error {
	return os.MkdirAll(d.dir, 0700)
}

// Get retrieves a live entry. Missing files, unreadable files, malformed
// entries and expired entries all report absent; stale or corrupt files are
// removed best-effort on the way out.
func (d *DiskStore) Get(key string) (*Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	path := d.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			metrics.errors.WithLabelValues("get").Inc()
			logrus.Debugf("Failed to read cache file %s: %v", path, err)
		}
		metrics.misses.Inc()
		return nil, false
	}

	entry, err := DecodeEntry(data)
	if err != nil {
		logrus.Debugf("Removing corrupt cache file %s: %v", path, err)
		metrics.errors.WithLabelValues("get").Inc()
		d.remove(path)
		metrics.misses.Inc()
		return nil, false
	}

	if d.now().Sub(entry.StoredAt) >= d.ttl {
		logrus.Debugf("Cache entry expired for key %q", key)
		d.remove(path)
		metrics.evictions.Inc()
		metrics.misses.Inc()
		return nil, false
	}

	metrics.hits.Inc()
	return entry, true
}

// Put persists the entry atomically. The entry is written to a temp file in
// the same directory and renamed into place so a concurrent Get never
// observes a half-written entry.
func (d *DiskStore) Put(key string, entry *Entry) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry.StoredAt = d.now()
	data, err := entry.Encode()
	if err != nil {
		metrics.errors.WithLabelValues("put").Inc()
		return err
	}

	tmp, err := os.CreateTemp(d.dir, ".entry-*")
	if err != nil {
		metrics.errors.WithLabelValues("put").Inc()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		d.remove(tmp.Name())
		metrics.errors.WithLabelValues("put").Inc()
		return err
	}
	if err := tmp.Close(); err != nil {
		d.remove(tmp.Name())
		metrics.errors.WithLabelValues("put").Inc()
		return err
	}

	path := d.entryPath(key)
	if err := os.Rename(tmp.Name(), path); err != nil {
		d.remove(tmp.Name())
		metrics.errors.WithLabelValues("put").Inc()
		return err
	}

	logrus.Debugf("Cached response for key %q at %s", key, path)
	return nil
}

// Clear deletes every persisted entry and returns the count removed.
// Safe to call on an empty or missing directory.
func (d *DiskStore) Clear() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dirents, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		metrics.errors.WithLabelValues("clear").Inc()
		return 0, err
	}

	removed := 0
	for _, dirent := range dirents {
		if dirent.IsDir() || !strings.HasSuffix(dirent.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, dirent.Name())); err != nil {
			metrics.errors.WithLabelValues("clear").Inc()
			return removed, err
		}
		removed++
	}

	logrus.Debugf("Cleared %d cache entries from %s", removed, d.dir)
	return removed, nil
}

func (d *DiskStore) entryPath(key string) string {
	return filepath.Join(d.dir, Filename(key))
}

func (d *DiskStore) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.Errorf("Failed to remove cache file %s: %v", path, err)
	}
}
