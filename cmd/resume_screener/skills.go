package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/spf13/cobra"
)

func newSkillsCmd(a *app) *cobra.Command {
	var (
		text   string
		file   string
		jdPath string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Extract taxonomy skills from a text or document",
		Long: `Lists the taxonomy skills found in --text or --file, grouped by category. With --jd, also lists the job
description skills missing from the document.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (text == "") == (file == "") {
				return errors.New("exactly one of --text or --file is required")
			}
			if file != "" {
				doc, err := ingestion.LoadFile(file)
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", file, err)
				}
				text = doc.Document.Text
			}

			taxonomy := a.taxonomy
			set := taxonomy.ExtractSkills(text)

			var gaps map[string][]string
			if jdPath != "" {
				jd, err := ingestion.LoadFile(jdPath)
				if err != nil {
					return fmt.Errorf("failed to load job description: %w", err)
				}
				gaps = ranking.NewScorer(nil, taxonomy).SkillGaps(text, jd.Document.Text)
			}

			if asJSON {
				payload := map[string]any{"skills": set, "count": set.Count()}
				if jdPath != "" {
					payload["skill_gaps"] = gaps
				}
				data, err := json.MarshalIndent(payload, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal skills to JSON: %w", err)
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			}

			a.printer.PrintSkills("SKILLS FOUND", set, taxonomy.Categories())
			if jdPath != "" {
				a.printer.PrintSkills("MISSING FROM JOB DESCRIPTION", gaps, taxonomy.Categories())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to scan")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Document to scan (.txt, .md, .html, .docx)")
	cmd.Flags().StringVarP(&jdPath, "jd", "j", "", "Job description file to compare against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a summary box")
	return cmd
}
