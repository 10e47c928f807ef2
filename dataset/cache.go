package dataset

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/cwbudde/algo-vibration/feature"
)

// Cache stores computed window tensors across builds. Implementations must
// be safe for concurrent use. A Get miss returns (nil, false, nil).
type Cache interface {
	Get(key CacheKey) (*feature.Tensor, bool, error)
	Put(key CacheKey, t *feature.Tensor) error
}

// CacheKey identifies one window tensor. Content hashes the raw samples, so
// an edited recording never serves a stale tensor.
type CacheKey struct {
	Config  uint64
	Source  string
	Window  int
	Content uint64
}

// NewCacheKey derives the key of w under the given config fingerprint.
func NewCacheKey(config uint64, w Window) CacheKey {
	return CacheKey{
		Config:  config,
		Source:  w.Source,
		Window:  w.Index,
		Content: ContentHash(w.Axes),
	}
}

// ContentHash returns the xxhash of the little-endian float64 bits of every
// axis in order, with each axis prefixed by its length.
func ContentHash(axes [feature.Channels][]float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, axis := range axes {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(axis)))
		_, _ = d.Write(buf[:])
		for _, v := range axis {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}

// Bytes returns the key encoding used by persistent caches.
func (k CacheKey) Bytes() []byte {
	b := make([]byte, 0, 48+len(k.Source))
	b = append(b, "feat/"...)
	b = strconv.AppendUint(b, k.Config, 16)
	b = append(b, '/')
	b = append(b, k.Source...)
	b = append(b, '/')
	b = strconv.AppendInt(b, int64(k.Window), 10)
	b = append(b, '/')
	b = strconv.AppendUint(b, k.Content, 16)
	return b
}

func (k CacheKey) String() string { return string(k.Bytes()) }
