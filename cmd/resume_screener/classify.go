package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "classify [files or directories...]",
		Short: "Predict the job category of resumes",
		Long:  "Loads the classifier bundle from --model-dir and predicts a category for --text or for each resume given as an argument.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(args) == 0 {
				return errors.New("provide --text or at least one resume path")
			}

			model, err := classifier.Load(a.cfg.ModelDir)
			if err != nil {
				return fmt.Errorf("failed to load classifier: %w", err)
			}

			type row struct {
				id   string
				pred classifier.Prediction
			}
			var rows []row

			if text != "" {
				pred, err := model.Predict(text)
				if err != nil {
					return err
				}
				rows = append(rows, row{id: "text", pred: pred})
			}
			if len(args) > 0 {
				resumes, err := ingestion.Load(args...)
				if err != nil {
					return fmt.Errorf("failed to load resumes: %w", err)
				}
				for _, r := range resumes {
					pred, err := model.Predict(r.Document.Text)
					if err != nil {
						return err
					}
					rows = append(rows, row{id: r.Document.ID, pred: pred})
				}
			}

			if a.cfg.Verbose {
				for _, r := range rows {
					a.printer.PrintPrediction(r.id, r.pred)
				}
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCONFIDENCE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%.3f\n", r.id, r.pred.Category, r.pred.Confidence)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to classify")
	return cmd
}
