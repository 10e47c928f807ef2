// Package recording reads tri-axial vibration tables from CSV files.
//
// A table has one header row followed by one row per sample. Column 0 is a
// timestamp and is ignored; columns 1, 2 and 3 hold the X, Y and Z axes.
// The recording identifier is the file name without its extension.
package recording

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-vibration/dataset"
	"github.com/cwbudde/algo-vibration/feature"
)

// Extension is the file extension LoadDir looks for.
const Extension = ".csv"

// ErrNoRecordings is returned by LoadDir for a directory without CSV files.
var ErrNoRecordings = errors.New("recording: no csv files")

// DefaultColumns are the X, Y and Z column indices.
var DefaultColumns = [feature.Channels]int{1, 2, 3}

// ParseError reports a malformed cell.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("recording: line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader decodes recordings.
type Reader struct {
	columns [feature.Channels]int
	log     logrus.FieldLogger
}

// Option configures a Reader.
type Option func(*Reader)

// WithColumns selects the X, Y and Z column indices.
func WithColumns(x, y, z int) Option {
	return func(r *Reader) { r.columns = [feature.Channels]int{x, y, z} }
}

// WithLogger sets the logger for skipped files.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader returns a Reader using DefaultColumns.
func NewReader(opts ...Option) *Reader {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Reader{columns: DefaultColumns, log: discard}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ID returns the identifier of the recording stored at path.
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read decodes one table. The header row is skipped.
func (r *Reader) Read(src io.Reader, id string) (dataset.Recording, error) {
	cr := csv.NewReader(src)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rec := dataset.Recording{ID: id}
	need := slices.Max(r.columns[:]) + 1

	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.Recording{}, fmt.Errorf("recording: %s: %w", id, err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(row) < need {
			return dataset.Recording{}, &ParseError{Line: line, Column: len(row),
				Err: fmt.Errorf("%d fields, want at least %d", len(row), need)}
		}

		for ch, col := range r.columns {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return dataset.Recording{}, &ParseError{Line: line, Column: col, Err: err}
			}
			rec.Axes[ch] = append(rec.Axes[ch], v)
		}
	}

	return rec, nil
}

// ReadFile decodes the table at path under its file-stem identifier.
func (r *Reader) ReadFile(path string) (dataset.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataset.Recording{}, err
	}
	defer f.Close()

	rec, err := r.Read(f, ID(path))
	if err != nil {
		return dataset.Recording{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// LoadDir reads every CSV file directly inside dir in file-name order.
// Files that fail to parse are logged and skipped. It returns
// ErrNoRecordings if dir holds no CSV files.
func (r *Reader) LoadDir(ctx context.Context, dir string) ([]dataset.Recording, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecordings, dir)
	}

	recs := make([]dataset.Recording, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.ReadFile(path)
		if err != nil {
			r.log.WithField("path", path).WithError(err).Warn("skipping unreadable recording")
			continue
		}

		r.log.WithFields(logrus.Fields{
			"source": rec.ID,
			"rows":   len(rec.Axes[0]),
		}).Debug("loaded recording")
		recs = append(recs, rec)
	}

	return recs, nil
}

// Write encodes rec as a table with a header and a sample-index first
// column, the inverse of Read with DefaultColumns.
func Write(w io.Writer, rec dataset.Recording) error {
	n, err := rec.Len()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "x", "y", "z"}); err != nil {
		return err
	}

	row := make([]string, 1+feature.Channels)
	for i := range n {
		row[0] = strconv.Itoa(i)
		for ch := range feature.Channels {
			row[1+ch] = strconv.FormatFloat(rec.Axes[ch][i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
