package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/spf13/cobra"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		corpus       string
		textColumn   string
		labelColumn  string
		testFraction float64
		seed         uint64
		trees        int
		evalOut      string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the job category classifier",
		Long: `Trains the TF-IDF + random forest category classifier on a labelled CSV corpus, prints the held-out
evaluation report and saves the model bundle to --model-dir.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if corpus == "" {
				corpus = a.cfg.Corpus
			}
			if corpus == "" {
				return errors.New("--corpus is required")
			}

			data, err := classifier.LoadCorpusCSV(corpus, classifier.CorpusColumns{Text: textColumn, Label: labelColumn})
			if err != nil {
				return err
			}
			a.logger.Info("loaded corpus", slog.String("path", corpus), slog.Int("rows", data.Len()))

			opts := classifier.DefaultTrainOptions()
			opts.Logger = a.logger
			if testFraction = firstPositiveFloat(testFraction, a.cfg.TestFraction); testFraction > 0 {
				opts.TestFraction = testFraction
			}
			if seed = firstPositiveUint(seed, a.cfg.Seed); seed > 0 {
				opts.Seed = seed
				opts.Forest.Seed = seed
			}
			if trees = firstPositive(trees, a.cfg.NEstimators); trees > 0 {
				opts.Forest.NEstimators = trees
			}
			opts.Forest.Workers = a.cfg.Workers

			model, eval, err := classifier.Train(cmd.Context(), data.Texts, data.Labels, opts)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}

			if err := classifier.Save(model, a.cfg.ModelDir); err != nil {
				return err
			}

			if a.cfg.Verbose {
				a.printer.PrintEvaluation(eval)
			} else {
				fmt.Fprintln(a.out, eval.Report())
			}
			if evalOut != "" {
				if err := writeJSONFile(evalOut, eval); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "Saved model %s (%d classes) to %s\n", model.BundleID(), len(model.Classes()), a.cfg.ModelDir)
			return nil
		},
	}

	defaults := classifier.DefaultCorpusColumns
	cmd.Flags().StringVarP(&corpus, "corpus", "c", "", "Labelled CSV corpus")
	cmd.Flags().StringVar(&textColumn, "text-column", defaults.Text, "CSV column holding resume text")
	cmd.Flags().StringVar(&labelColumn, "label-column", defaults.Label, "CSV column holding the category label")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", 0, "Held-out fraction per class (default 0.2)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for the split and forest (default 42)")
	cmd.Flags().IntVar(&trees, "trees", 0, "Number of trees in the forest (default 100)")
	cmd.Flags().StringVar(&evalOut, "eval-out", "", "Write the evaluation as JSON to this path")
	return cmd
}

func firstPositiveFloat(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveUint(values ...uint64) uint64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
