package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/cwbudde/algo-vibration/dataset"
)

// progressReporter renders builder progress. finish must be called once
// the build returns, successful or not.
type progressReporter interface {
	update(done, total int)
	finish()
}

func newProgress(mode string, w io.Writer) (progressReporter, error) {
	switch mode {
	case "bar":
		return &barProgress{p: mpb.New(mpb.WithOutput(w), mpb.WithWidth(64))}, nil
	case "json":
		return &jsonProgress{enc: json.NewEncoder(w), last: -1}, nil
	case "none":
		return nopProgress{}, nil
	}
	return nil, fmt.Errorf("unknown progress mode %q (bar, json, none)", mode)
}

func progressFunc(r progressReporter) dataset.ProgressFunc {
	return r.update
}

// barProgress draws an mpb bar created on the first update, when the number
// of uncached work items is known.
type barProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func (b *barProgress) update(done, total int) {
	if b.bar == nil {
		b.bar = b.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("Extracting: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.AverageETA(decor.ET_STYLE_GO),
			),
		)
	}
	b.bar.SetCurrent(int64(done))
}

func (b *barProgress) finish() {
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.p.Wait()
}

// jsonProgress emits {"type":"dataset_progress","progress":N} whenever the
// integer percentage grows.
type jsonProgress struct {
	enc  *json.Encoder
	last int
}

type progressEvent struct {
	Type     string `json:"type"`
	Progress int    `json:"progress"`
}

func (j *jsonProgress) update(done, total int) {
	if total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct <= j.last {
		return
	}
	j.last = pct
	_ = j.enc.Encode(progressEvent{Type: "dataset_progress", Progress: pct})
}

func (*jsonProgress) finish() {}

type nopProgress struct{}

func (nopProgress) update(int, int) {}
func (nopProgress) finish()         {}
