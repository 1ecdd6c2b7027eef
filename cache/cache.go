// Package cache stores compiled output on disk, keyed by a hash of the source
// text and everything else that affects compilation.
//
// Entries are msgpack-encoded files under the cache directory. An entry
// written by a different akore version is treated as a miss.
package cache

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrRead  = lang.NewError("failed to read cache entry")
	ErrWrite = lang.NewError("failed to write cache entry")
)

const entryExt = ".mp"

// Entry is a cached compilation.
type Entry struct {
	Version string    `msgpack:"version"`
	Output  string    `msgpack:"output"`
	Created time.Time `msgpack:"created"`
}

// Cache is an on-disk cache of compiled output. It is safe for concurrent
// use within a process.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	version string
	logger  log.Logger
}

// Option configures a [Cache].
type Option func(*Cache)

// WithLogger sets the logger used for hit and miss records.
func WithLogger(logger log.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithVersion sets the version stamped on written entries and required of
// read entries. The default is the akore version.
func WithVersion(version string) Option {
	return func(c *Cache) { c.version = version }
}

// New returns a Cache rooted at dir. The directory is created on the first
// write.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{dir: dir, version: pkg.Version}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Key returns the cache key of source compiled under the given fingerprint,
// such as the enabled instructions and format options.
func Key(source string, fingerprint ...string) string {
	h := murmur3.New128()

	_, _ = h.Write([]byte(source))

	for _, f := range fingerprint {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(f))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	if len(key) < 2 {
		return filepath.Join(c.dir, key+entryExt)
	}

	return filepath.Join(c.dir, key[:2], key+entryExt)
}

// Get returns the entry stored under key. It reports false when there is no
// entry or the entry was written by another version.
func (c *Cache) Get(key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Trace("cache miss", slog.String("key", key))

			return Entry{}, false, nil
		}

		return Entry{}, false, ErrRead.Wrap(err).With(slog.String("key", key))
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return Entry{}, false, ErrRead.Wrap(err).With(slog.String("key", key))
	}

	if e.Version != c.version {
		c.logger.Debug("cache entry outdated",
			slog.String("key", key),
			slog.String("version", e.Version),
		)

		return Entry{}, false, nil
	}

	c.logger.Trace("cache hit", slog.String("key", key))

	return e, true, nil
}

// Put stores e under key, replacing any existing entry. The version and,
// when zero, the creation time of e are set by Put.
func (c *Cache) Put(key string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.Version = c.version
	if e.Created.IsZero() {
		e.Created = time.Now()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("key", key))
	}

	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("key", key))
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&e); err != nil {
		_ = f.Close()

		return ErrWrite.Wrap(err).With(slog.String("key", key))
	}

	if err := f.Close(); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("key", key))
	}

	if err := os.Rename(f.Name(), path); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("key", key))
	}

	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}
