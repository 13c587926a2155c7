package classifier

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/textproc"
	"github.com/jonathan/resume-screener/internal/types"
)

// State is the lifecycle stage of a Model.
type State int32

const (
	StateUntrained State = iota
	StateTrained
	StatePersisted
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	case StatePersisted:
		return "persisted"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Prediction is the classifier's answer for one text.
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Unmapped   bool    `json:"unmapped,omitempty"`
}

// Model bundles the vectorizer, label encoder and forest that were fitted
// together. A Model is immutable once trained or loaded and safe for
// concurrent prediction.
type Model struct {
	bundleID   uuid.UUID
	createdAt  time.Time
	vectorizer *Vectorizer
	encoder    *LabelEncoder
	forest     *Forest

	state atomic.Int32
}

// NewModel returns an untrained model. Predict fails until it is replaced by
// the result of Train or Load.
func NewModel() *Model {
	return &Model{}
}

func newModel(v *Vectorizer, e *LabelEncoder, f *Forest, id uuid.UUID, created time.Time, s State) *Model {
	m := &Model{
		bundleID:   id,
		createdAt:  created,
		vectorizer: v,
		encoder:    e,
		forest:     f,
	}
	m.state.Store(int32(s))
	return m
}

// State returns the current lifecycle stage.
func (m *Model) State() State {
	return State(m.state.Load())
}

// Ready reports whether the model can serve predictions.
func (m *Model) Ready() bool {
	switch m.State() {
	case StateTrained, StatePersisted, StateLoaded:
		return m.vectorizer != nil && m.encoder != nil && m.forest != nil
	}
	return false
}

// BundleID identifies the artifact set this model was trained or loaded as.
func (m *Model) BundleID() uuid.UUID {
	return m.bundleID
}

// CreatedAt returns the training time.
func (m *Model) CreatedAt() time.Time {
	return m.createdAt
}

// Classes returns the known category labels in encoder order.
func (m *Model) Classes() []string {
	if m.encoder == nil {
		return nil
	}
	return append([]string(nil), m.encoder.Classes...)
}

// NumFeatures returns the vocabulary size of the fitted vectorizer.
func (m *Model) NumFeatures() int {
	if m.vectorizer == nil {
		return 0
	}
	return m.vectorizer.NumFeatures()
}

// Predict classifies one resume text.
func (m *Model) Predict(text string) (Prediction, error) {
	if !m.Ready() {
		return Prediction{}, ErrModelUnavailable
	}

	x := m.vectorizer.Transform(textproc.Light(text))
	id, confidence := m.forest.Predict(x)
	category, ok := m.encoder.Decode(id)
	if !ok {
		return Prediction{Category: types.UnknownCategory, Confidence: 0, Unmapped: true}, nil
	}
	return Prediction{Category: category, Confidence: confidence}, nil
}

// PredictAny classifies v when it is a string. Any other value yields the
// unknown category with zero confidence.
func (m *Model) PredictAny(v any) (Prediction, error) {
	text, ok := v.(string)
	if !ok {
		return Prediction{Category: types.UnknownCategory, Confidence: 0}, nil
	}
	return m.Predict(text)
}

// PredictCategory lets a Model act as the ranking category predictor.
func (m *Model) PredictCategory(text string) (string, float64, error) {
	p, err := m.Predict(text)
	if err != nil {
		return "", 0, err
	}
	return p.Category, p.Confidence, nil
}

// Holder publishes the current model to concurrent readers. Swapping the
// model never blocks in-flight predictions.
type Holder struct {
	current atomic.Pointer[Model]
}

// NewHolder returns a holder publishing m, which may be nil.
func NewHolder(m *Model) *Holder {
	h := &Holder{}
	if m != nil {
		h.current.Store(m)
	}
	return h
}

// Model returns the published model or nil.
func (h *Holder) Model() *Model {
	return h.current.Load()
}

// Swap publishes m and returns the previous model.
func (h *Holder) Swap(m *Model) *Model {
	return h.current.Swap(m)
}

// Predict classifies text with the published model.
func (h *Holder) Predict(text string) (Prediction, error) {
	m := h.current.Load()
	if m == nil {
		return Prediction{}, ErrModelUnavailable
	}
	return m.Predict(text)
}

// PredictCategory implements the ranking category predictor.
func (h *Holder) PredictCategory(text string) (string, float64, error) {
	m := h.current.Load()
	if m == nil {
		return "", 0, ErrModelUnavailable
	}
	return m.PredictCategory(text)
}
