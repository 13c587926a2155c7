package classifier

import (
	"fmt"
	"sort"
)

// LabelEncoder maps category names to dense integer ids in lexical order.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// Fit records the sorted set of distinct labels.
func (e *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	e.Classes = classes
	e.buildIndex()
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Encode returns the id of label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	id, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", label)
	}
	return id, nil
}

// EncodeAll encodes every label, failing on the first unknown one.
func (e *LabelEncoder) EncodeAll(labels []string) ([]int, error) {
	ids := make([]int, len(labels))
	for i, l := range labels {
		id, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode maps an id back to its label. ok is false for ids outside the encoder.
func (e *LabelEncoder) Decode(id int) (label string, ok bool) {
	if id < 0 || id >= len(e.Classes) {
		return "", false
	}
	return e.Classes[id], true
}
