package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/textproc"
)

// TrainOptions configures a training run.
type TrainOptions struct {
	TestFraction float64
	Seed         uint64
	Vectorizer   VectorizerConfig
	Forest       ForestConfig
	Logger       *slog.Logger
}

// DefaultTrainOptions returns an 80/20 split seeded with 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestFraction: 0.2,
		Seed:         42,
		Vectorizer:   DefaultVectorizerConfig(),
		Forest:       DefaultForestConfig(),
	}
}

// Train fits a category model on labelled resume texts and evaluates it on a
// stratified held-out partition.
func Train(ctx context.Context, texts, labels []string, opts TrainOptions) (*Model, *Evaluation, error) {
	if len(texts) == 0 {
		return nil, nil, &InputError{Message: "training corpus is empty"}
	}
	if len(texts) != len(labels) {
		return nil, nil, &InputError{Message: fmt.Sprintf("got %d texts but %d labels", len(texts), len(labels))}
	}
	for i, l := range labels {
		if strings.TrimSpace(l) == "" {
			return nil, nil, &InputError{Message: fmt.Sprintf("empty label at row %d", i)}
		}
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	docs := make([]string, len(texts))
	for i, t := range texts {
		docs[i] = textproc.Light(t)
	}

	encoder := &LabelEncoder{}
	encoder.Fit(labels)
	y, err := encoder.EncodeAll(labels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode labels: %w", err)
	}

	trainIdx, testIdx, err := stratifiedSplit(y, encoder.Classes, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("split corpus",
		slog.Int("classes", len(encoder.Classes)),
		slog.Int("train", len(trainIdx)),
		slog.Int("test", len(testIdx)))

	vectorizer := NewVectorizer(opts.Vectorizer)
	if err := vectorizer.Fit(pick(docs, trainIdx)); err != nil {
		return nil, nil, err
	}
	logger.Info("fitted vectorizer", slog.Int("features", vectorizer.NumFeatures()))

	xTrain := vectorizer.TransformAll(pick(docs, trainIdx))
	yTrain := pick(y, trainIdx)

	forestCfg := opts.Forest
	if forestCfg.NEstimators <= 0 {
		forestCfg.NEstimators = DefaultForestConfig().NEstimators
	}
	if forestCfg.Seed == 0 {
		forestCfg.Seed = opts.Seed
	}
	forest := NewForest(forestCfg)
	if err := forest.Fit(ctx, xTrain, yTrain, len(encoder.Classes), vectorizer.NumFeatures()); err != nil {
		return nil, nil, err
	}
	logger.Info("fitted forest", slog.Int("trees", len(forest.Trees)))

	model := newModel(vectorizer, encoder, forest, uuid.New(), time.Now().UTC(), StateTrained)

	yTest := pick(y, testIdx)
	yPred := make([]int, len(testIdx))
	for i, idx := range testIdx {
		yPred[i], _ = forest.Predict(vectorizer.Transform(docs[idx]))
	}
	eval := evaluate(yTest, yPred, encoder.Classes)
	eval.TrainSize = len(trainIdx)
	logger.Info("evaluated model", slog.Float64("accuracy", eval.Accuracy))

	return model, eval, nil
}

func pick[T any](values []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
