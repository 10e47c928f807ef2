package dataset

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cwbudde/algo-vibration/feature"
)

// formatVersion is bumped whenever the msgpack layout changes.
const formatVersion = 1

// Sample is one labeled window tensor.
type Sample struct {
	Tensor *feature.Tensor `msgpack:"tensor"`
	Label  int             `msgpack:"label"`
	Source string          `msgpack:"source"`
	Window int             `msgpack:"window"`
}

// Dataset is the ordered result of a build.
type Dataset struct {
	Config     feature.Config
	WindowSize int
	Vocabulary *Vocabulary
	Samples    []Sample
	Stats      Stats
}

// Stats counts the skip events of a build.
type Stats struct {
	Sources        int `json:"sources" msgpack:"sources"`
	SourcesSkipped int `json:"sources_skipped" msgpack:"sources_skipped"`
	Windows        int `json:"windows" msgpack:"windows"`
	WindowsFailed  int `json:"windows_failed" msgpack:"windows_failed"`
	CacheHits      int `json:"cache_hits" msgpack:"cache_hits"`
}

// Summary is the post-build report.
type Summary struct {
	SampleNum    int      `json:"sample_num"`
	ClassNum     int      `json:"class_num"`
	ClassLabels  []string `json:"class_labels"`
	FeatureShape [3]int   `json:"feature_shape"`
	Stats
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Samples) }

// Shape returns the (frames, numcep, channels) shape shared by all samples.
func (d *Dataset) Shape() [3]int {
	if len(d.Samples) == 0 {
		return [3]int{}
	}
	return d.Samples[0].Tensor.Shape()
}

// Summary returns the build report.
func (d *Dataset) Summary() Summary {
	return Summary{
		SampleNum:    len(d.Samples),
		ClassNum:     d.Vocabulary.Len(),
		ClassLabels:  d.Vocabulary.Labels(),
		FeatureShape: d.Shape(),
		Stats:        d.Stats,
	}
}

// WriteTable prints s as aligned key/value rows.
func (s Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "samples\t%d\n", s.SampleNum)
	_, _ = fmt.Fprintf(tw, "classes\t%d\n", s.ClassNum)
	_, _ = fmt.Fprintf(tw, "labels\t%v\n", s.ClassLabels)
	_, _ = fmt.Fprintf(tw, "feature shape\t%v\n", s.FeatureShape)
	_, _ = fmt.Fprintf(tw, "sources\t%d (%d skipped)\n", s.Sources, s.SourcesSkipped)
	_, _ = fmt.Fprintf(tw, "windows\t%d (%d failed, %d cached)\n", s.Windows, s.WindowsFailed, s.CacheHits)
	return tw.Flush()
}

type datasetFile struct {
	Version    int            `msgpack:"version"`
	Config     feature.Config `msgpack:"config"`
	WindowSize int            `msgpack:"window_size"`
	Labels     []string       `msgpack:"labels"`
	Samples    []Sample       `msgpack:"samples"`
	Stats      Stats          `msgpack:"stats"`
}

// Write encodes d to w as msgpack.
func Write(w io.Writer, d *Dataset) error {
	f := datasetFile{
		Version:    formatVersion,
		Config:     d.Config,
		WindowSize: d.WindowSize,
		Labels:     d.Vocabulary.Labels(),
		Samples:    d.Samples,
		Stats:      d.Stats,
	}
	if err := msgpack.NewEncoder(w).Encode(&f); err != nil {
		return fmt.Errorf("dataset: encode: %w", err)
	}
	return nil
}

// Read decodes a dataset written by Write.
func Read(r io.Reader) (*Dataset, error) {
	var f datasetFile
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("dataset: unsupported format version %d", f.Version)
	}

	vocab := &Vocabulary{}
	if err := vocab.set(f.Labels); err != nil {
		return nil, err
	}
	for i, s := range f.Samples {
		if s.Tensor == nil {
			return nil, fmt.Errorf("dataset: sample %d has no tensor", i)
		}
		if s.Label < 0 || s.Label >= vocab.Len() {
			return nil, fmt.Errorf("dataset: sample %d label %d out of range", i, s.Label)
		}
	}

	return &Dataset{
		Config:     f.Config,
		WindowSize: f.WindowSize,
		Vocabulary: vocab,
		Samples:    f.Samples,
		Stats:      f.Stats,
	}, nil
}
