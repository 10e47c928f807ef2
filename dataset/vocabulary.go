package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is a dense bijection between source identifiers and label
// indices 0..Len()-1, ordered lexicographically.
type Vocabulary struct {
	labels []string
	index  map[string]int
}

// NewVocabulary returns the sorted vocabulary of the distinct ids.
func NewVocabulary(ids []string) *Vocabulary {
	labels := slices.Clone(ids)
	slices.Sort(labels)
	labels = slices.Compact(labels)

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	return &Vocabulary{labels: labels, index: index}
}

// Len returns the number of classes.
func (v *Vocabulary) Len() int { return len(v.labels) }

// Labels returns a copy of the labels in index order.
func (v *Vocabulary) Labels() []string { return slices.Clone(v.labels) }

// Index returns the label index of id.
func (v *Vocabulary) Index(id string) (int, bool) {
	i, ok := v.index[id]
	return i, ok
}

// Label returns the identifier of label index i.
func (v *Vocabulary) Label(i int) (string, bool) {
	if i < 0 || i >= len(v.labels) {
		return "", false
	}
	return v.labels[i], true
}

type vocabularyFile struct {
	Labels []string `json:"labels" yaml:"labels"`
}

func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabularyFile{Labels: v.labels})
}

func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var f vocabularyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	return v.set(f.Labels)
}

func (v *Vocabulary) MarshalYAML() (any, error) {
	return vocabularyFile{Labels: v.labels}, nil
}

func (v *Vocabulary) UnmarshalYAML(node *yaml.Node) error {
	var f vocabularyFile
	if err := node.Decode(&f); err != nil {
		return err
	}
	return v.set(f.Labels)
}

// set installs persisted labels, which must already be sorted and unique
// for indices to agree with a fresh build.
func (v *Vocabulary) set(labels []string) error {
	for i := 1; i < len(labels); i++ {
		if labels[i-1] >= labels[i] {
			return fmt.Errorf("dataset: vocabulary labels not sorted and unique at %d (%q, %q)", i, labels[i-1], labels[i])
		}
	}
	*v = *NewVocabulary(labels)
	return nil
}

// SaveVocabulary writes v to path as YAML for .yaml/.yml extensions and as
// JSON otherwise.
func SaveVocabulary(path string, v *Vocabulary) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("dataset: encode vocabulary: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadVocabulary reads a vocabulary written by SaveVocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	v := &Vocabulary{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: decode vocabulary %s: %w", path, err)
	}

	return v, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
