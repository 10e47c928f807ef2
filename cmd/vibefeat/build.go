package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vibration/dataset"
	"github.com/cwbudde/algo-vibration/feature"
	"github.com/cwbudde/algo-vibration/internal/config"
	"github.com/cwbudde/algo-vibration/internal/featcache"
	"github.com/cwbudde/algo-vibration/internal/recording"
)

const (
	datasetFileName  = "dataset.msgpack"
	manifestFileName = "manifest.json"
)

// manifest describes one build output directory.
type manifest struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Source     string          `json:"source"`
	WindowSize int             `json:"window_size"`
	Features   feature.Config  `json:"features"`
	Summary    dataset.Summary `json:"summary"`
	Files      []string        `json:"files"`
}

type summaryEvent struct {
	Type string `json:"type"`
	dataset.Summary
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		outDir      string
		progress    string
		summary     string
		vocabFormat string
	)

	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Build a labeled feature dataset from a directory of CSV recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if summary != "table" && summary != "json" {
				return fmt.Errorf("unknown summary format %q (table, json)", summary)
			}
			if vocabFormat != "json" && vocabFormat != "yaml" {
				return fmt.Errorf("unknown vocabulary format %q (json, yaml)", vocabFormat)
			}
			return a.build(cmd, args[0], outDir, progress, summary, vocabFormat)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outDir, "out", "o", ".", "output directory")
	f.StringVar(&progress, "progress", "bar", "progress output (bar, json, none)")
	f.StringVar(&summary, "summary", "table", "summary output (table, json)")
	f.StringVar(&vocabFormat, "vocab-format", "json", "vocabulary file format (json, yaml)")
	f.Int("workers", 0, "concurrent work items (0 = GOMAXPROCS)")
	f.Bool("cache", false, "reuse feature tensors from the persistent cache")
	f.String("cache-dir", "", "feature cache directory")
	f.Duration("cache-ttl", 0, "feature cache entry lifetime (0 = forever)")

	return cmd
}

func (a *app) build(cmd *cobra.Command, dir, outDir, progressMode, summaryFormat, vocabFormat string) error {
	ctx := cmd.Context()
	cfg := a.cfg

	ex, err := feature.NewExtractor(cfg.Features)
	if err != nil {
		return err
	}

	recs, err := recording.NewReader(recording.WithLogger(a.log)).LoadDir(ctx, dir)
	if err != nil {
		return err
	}

	opts := []dataset.Option{
		dataset.WithLogger(a.log),
		dataset.WithWorkers(cfg.Workers),
	}

	if cfg.Cache.Enabled {
		cache, err := openCache(cfg, a)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				a.log.WithError(err).Warn("closing feature cache")
			}
		}()
		opts = append(opts, dataset.WithCache(cache))
	}

	reporter, err := newProgress(progressMode, a.stderr)
	if err != nil {
		return err
	}
	opts = append(opts, dataset.WithProgress(progressFunc(reporter)))

	builder, err := dataset.NewBuilder(ex, cfg.WindowSize, opts...)
	if err != nil {
		return err
	}

	ds, err := builder.Build(ctx, recs)
	reporter.finish()
	if err != nil {
		return err
	}

	files, err := writeOutputs(outDir, ds, vocabFormat)
	if err != nil {
		return err
	}

	m := manifest{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Source:     dir,
		WindowSize: cfg.WindowSize,
		Features:   cfg.Features,
		Summary:    ds.Summary(),
		Files:      files,
	}
	if err := writeJSON(filepath.Join(outDir, manifestFileName), m); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"build":   m.ID,
		"samples": ds.Len(),
		"out":     outDir,
	}).Info("dataset written")

	if summaryFormat == "json" {
		return json.NewEncoder(a.stdout).Encode(summaryEvent{Type: "dataset_summary", Summary: m.Summary})
	}
	return m.Summary.WriteTable(a.stdout)
}

func openCache(cfg *config.Config, a *app) (*featcache.Cache, error) {
	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		return nil, err
	}
	return featcache.Open(featcache.Options{
		Dir:    cfg.Cache.Dir,
		TTL:    cfg.Cache.TTL,
		Logger: a.log,
	})
}

func writeOutputs(outDir string, ds *dataset.Dataset, vocabFormat string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(outDir, datasetFileName))
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	if err := dataset.Write(w, ds); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	vocabName := "vocabulary." + vocabFormat
	if err := dataset.SaveVocabulary(filepath.Join(outDir, vocabName), ds.Vocabulary); err != nil {
		return nil, err
	}

	return []string{datasetFileName, vocabName}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
