package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-vibration/feature"
)

// ProgressFunc receives the number of finished and total work items. Calls
// are serialized and done is strictly increasing.
type ProgressFunc func(done, total int)

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers bounds the number of concurrent work items. Values <= 0 keep
// the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger for skip events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithCache enables a window tensor cache.
func WithCache(c Cache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// Builder turns recordings into a Dataset. A Builder holds no per-build
// state and may run several builds concurrently.
type Builder struct {
	ex          *feature.Extractor
	windowSize  int
	workers     int
	fingerprint uint64
	log         logrus.FieldLogger
	cache       Cache
	progress    ProgressFunc
}

// NewBuilder returns a Builder segmenting recordings into windows of
// windowSize rows and extracting features with ex.
func NewBuilder(ex *feature.Extractor, windowSize int, opts ...Option) (*Builder, error) {
	if ex == nil {
		return nil, errors.New("dataset: nil extractor")
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("dataset: window size must be > 0, got %d", windowSize)
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := &Builder{
		ex:          ex,
		windowSize:  windowSize,
		workers:     runtime.GOMAXPROCS(0),
		fingerprint: ex.Config().Fingerprint(),
		log:         discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b, nil
}

// slot collects the results of one window. Each axis is written by exactly
// one work item.
type slot struct {
	window Window
	source int
	key    CacheKey
	tensor *feature.Tensor
	axes   [feature.Channels]*mat.Dense
	errs   [feature.Channels]error
}

type workItem struct {
	slot *slot
	axis int
}

// Build segments recs, fixes the vocabulary and computes every window.
//
// Recordings shorter than one window are skipped and windows that fail to
// compute are dropped; both are logged and counted in Dataset.Stats. Build
// returns ErrEmptyDataset if nothing survives and ctx.Err() if ctx is
// cancelled before all work items finish.
func (b *Builder) Build(ctx context.Context, recs []Recording) (*Dataset, error) {
	stats := Stats{Sources: len(recs)}

	// Pass 1: segmentation and vocabulary.
	var (
		slots []*slot
		ids   []string
	)
	for s, rec := range recs {
		windows, err := Segment(rec, b.windowSize)
		if err != nil {
			var skip *SkipError
			if !errors.As(err, &skip) {
				return nil, err
			}
			stats.SourcesSkipped++
			b.log.WithFields(logrus.Fields{
				"source": rec.ID,
				"rows":   skip.Rows,
			}).WithError(skip.Err).Warn("skipping recording")
			continue
		}

		ids = append(ids, rec.ID)
		for _, w := range windows {
			slots = append(slots, &slot{window: w, source: s})
		}
	}
	stats.Windows = len(slots)

	vocab := NewVocabulary(ids)

	// Pass 2: features.
	items := b.lookup(slots, &stats)
	if err := b.run(ctx, items); err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(slots))
	for _, sl := range slots {
		t, err := b.assemble(sl)
		if err != nil {
			stats.WindowsFailed++
			b.log.WithFields(logrus.Fields{
				"source": sl.window.Source,
				"window": sl.window.Index,
				"axis":   axisOf(err),
			}).WithError(err).Warn("dropping window")
			continue
		}

		label, _ := vocab.Index(sl.window.Source)
		samples = append(samples, Sample{
			Tensor: t,
			Label:  label,
			Source: sl.window.Source,
			Window: sl.window.Index,
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %d recordings, %d skipped, %d of %d windows failed",
			ErrEmptyDataset, stats.Sources, stats.SourcesSkipped, stats.WindowsFailed, stats.Windows)
	}

	return &Dataset{
		Config:     b.ex.Config(),
		WindowSize: b.windowSize,
		Vocabulary: vocab,
		Samples:    samples,
		Stats:      stats,
	}, nil
}

// lookup serves windows from the cache and returns the work items of the
// rest. Cache errors count as misses.
func (b *Builder) lookup(slots []*slot, stats *Stats) []workItem {
	want := b.ex.Shape(b.windowSize)
	items := make([]workItem, 0, len(slots)*feature.Channels)

	for _, sl := range slots {
		if b.cache != nil {
			sl.key = NewCacheKey(b.fingerprint, sl.window)
			t, ok, err := b.cache.Get(sl.key)
			switch {
			case err != nil:
				b.log.WithField("key", sl.key.String()).WithError(err).Warn("cache lookup failed")
			case ok && t.Shape() == want:
				sl.tensor = t
				stats.CacheHits++
				continue
			}
		}

		for axis := range feature.Channels {
			items = append(items, workItem{slot: sl, axis: axis})
		}
	}

	return items
}

func (b *Builder) run(ctx context.Context, items []workItem) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	var (
		mu   sync.Mutex
		done int
	)
	total := len(items)

	for _, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sl := it.slot
			sl.axes[it.axis], sl.errs[it.axis] = b.ex.ExtractAxis(sl.window.Axes[it.axis])

			if b.progress != nil {
				mu.Lock()
				done++
				b.progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// assemble stacks the axes of a computed window, or returns the cached
// tensor. Freshly stacked tensors are written back to the cache.
func (b *Builder) assemble(sl *slot) (*feature.Tensor, error) {
	if sl.tensor != nil {
		return sl.tensor, nil
	}

	w := sl.window
	for axis, err := range sl.errs {
		if err != nil {
			return nil, &WindowError{Source: w.Source, Window: w.Index, Axis: axis, Err: err}
		}
	}

	t, err := feature.StackAxes(sl.axes)
	if err != nil {
		return nil, &WindowError{Source: w.Source, Window: w.Index, Axis: -1, Err: err}
	}

	if b.cache != nil {
		if err := b.cache.Put(sl.key, t); err != nil {
			b.log.WithField("key", sl.key.String()).WithError(err).Warn("cache store failed")
		}
	}

	return t, nil
}

// axisOf returns the axis a window error is attributed to, or -1.
func axisOf(err error) int {
	var we *WindowError
	if errors.As(err, &we) {
		return we.Axis
	}
	var ae *feature.AxisError
	if errors.As(err, &ae) {
		return ae.Axis
	}
	return -1
}
