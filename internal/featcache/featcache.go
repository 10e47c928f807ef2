// Package featcache persists window feature tensors in BadgerDB so repeated
// dataset builds over an unchanged corpus skip recomputation.
package featcache

import (
	"errors"
	"fmt"
	"io"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cwbudde/algo-vibration/dataset"
	"github.com/cwbudde/algo-vibration/feature"
)

// prefix is shared by every key written by dataset.CacheKey.Bytes.
var prefix = []byte("feat/")

// ErrCorrupt is returned for entries whose payload does not decode to a
// consistent tensor.
var ErrCorrupt = errors.New("featcache: corrupt entry")

// Options configures Open.
type Options struct {
	// Dir holds the badger files. Required unless InMemory is set.
	Dir string
	// InMemory keeps everything in memory.
	InMemory bool
	// TTL expires entries after the given duration; zero keeps them forever.
	TTL time.Duration
	// Logger receives badger's warnings and errors. Nil discards them.
	Logger logrus.FieldLogger
}

// Cache is a dataset.Cache backed by BadgerDB. It is safe for concurrent
// use.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ dataset.Cache = (*Cache)(nil)

// Open opens or creates a cache.
func Open(opts Options) (*Cache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("featcache: Dir is required for on-disk mode")
	}

	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	dbOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{log.WithField("component", "badger")})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("featcache: open %s: %w", opts.Dir, err)
	}

	return &Cache{db: db, ttl: opts.TTL}, nil
}

// Get returns the tensor stored under key.
func (c *Cache) Get(key dataset.CacheKey) (*feature.Tensor, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key.Bytes())
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	t, err := decode(val)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", key, err)
	}
	return t, true, nil
}

// Put stores t under key.
func (c *Cache) Put(key dataset.CacheKey, t *feature.Tensor) error {
	val, err := msgpack.Marshal(t)
	if err != nil {
		return fmt.Errorf("featcache: encode: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key.Bytes(), val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Len returns the number of cached tensors.
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge removes every cached tensor.
func (c *Cache) Purge() error {
	return c.db.DropPrefix(prefix)
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func decode(val []byte) (*feature.Tensor, error) {
	var t feature.Tensor
	if err := msgpack.Unmarshal(val, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if t.Frames < 0 || t.Coeffs < 0 || len(t.Data) != t.Frames*t.Coeffs*feature.Channels {
		return nil, fmt.Errorf("%w: %dx%d tensor with %d values", ErrCorrupt, t.Frames, t.Coeffs, len(t.Data))
	}
	return &t, nil
}

// badgerLogger forwards badger's warnings and errors and drops its chatter.
type badgerLogger struct {
	log logrus.FieldLogger
}

func (l badgerLogger) Errorf(f string, v ...any)   { l.log.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...any) { l.log.Warnf(f, v...) }
func (badgerLogger) Infof(string, ...any)          {}
func (badgerLogger) Debugf(string, ...any)         {}
