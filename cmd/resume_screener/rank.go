package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/store"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/spf13/cobra"
)

type rankOptions struct {
	jd         string
	jdURL      string
	resumes    []string
	topN       int
	topNSet    bool
	workers    int
	out        string
	save       bool
	noClassify bool
	useBrowser bool
}

func (o *rankOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.jd, "jd", "j", "", "Path to job description file (.txt, .md, .html, .docx)")
	flags.StringVar(&o.jdURL, "jd-url", "", "URL to fetch the job description from")
	flags.StringSliceVarP(&o.resumes, "resumes", "r", nil, "Resume files or directories (required)")
	flags.IntVarP(&o.topN, "top-n", "n", 0, "Number of candidates to return (0 returns all; default from config)")
	flags.IntVar(&o.workers, "workers", 0, "Concurrent scoring workers (0 uses all CPUs)")
	flags.BoolVar(&o.noClassify, "no-classify", false, "Skip category prediction even if a model is available")
	flags.BoolVar(&o.useBrowser, "use-browser", false, "Render the job description URL in a headless browser when static fetch yields too little text")

	if err := cmd.MarkFlagRequired("resumes"); err != nil {
		panic(fmt.Sprintf("failed to mark resumes flag as required: %v", err))
	}
}

func newRankCmd(a *app) *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank resumes against a job description",
		Long: `Scores every resume against the job description (keyword overlap and taxonomy skill coverage), predicts categories
with the trained classifier when one is available, and prints the ranking. Use --out to write RankedCandidates JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.topNSet = cmd.Flags().Changed("top-n")
			return runRank(cmd.Context(), a, opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to output RankedCandidates JSON file")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the returned candidates to the store")
	return cmd
}

// rankResumes loads inputs, ranks them and returns the resumes alongside the result.
func rankResumes(ctx context.Context, a *app, opts *rankOptions) (*types.RankedCandidates, []*ingestion.Resume, error) {
	if opts.useBrowser {
		a.cfg.UseBrowser = true
	}

	jdPath, jdURL := opts.jd, opts.jdURL
	if jdPath == "" && jdURL == "" {
		jdPath, jdURL = a.cfg.JobDescription, a.cfg.JobURL
	}
	jd, err := a.loadJobDescription(ctx, jdPath, jdURL)
	if err != nil {
		return nil, nil, err
	}

	resumes, err := ingestion.Load(opts.resumes...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load resumes: %w", err)
	}
	if len(resumes) == 0 {
		return nil, nil, fmt.Errorf("no supported resume files found in %v", opts.resumes)
	}
	a.logger.Info("loaded resumes", slog.Int("count", len(resumes)))

	topN := a.cfg.TopN
	if opts.topNSet {
		topN = opts.topN
	}
	rankOpts := ranking.Options{
		TopN:    topN,
		Workers: firstPositive(opts.workers, a.cfg.Workers),
	}
	if !opts.noClassify {
		// A nil *Model must not become a non-nil interface.
		if model := a.loadModel(a.cfg.ModelDir); model != nil {
			rankOpts.Predictor = model
		}
	}

	result, err := a.ranker().Rank(ctx, ingestion.Documents(resumes), jd, rankOpts)
	if err != nil {
		return nil, nil, err
	}
	return result, resumes, nil
}

func runRank(ctx context.Context, a *app, opts *rankOptions) error {
	result, resumes, err := rankResumes(ctx, a, opts)
	if err != nil {
		return err
	}

	if opts.out != "" {
		jsonOutput, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal ranked candidates to JSON: %w", err)
		}
		if err := schemas.Validate(schemas.RankedCandidates, jsonOutput); err != nil {
			return fmt.Errorf("ranked candidates failed schema validation: %w", err)
		}
		if err := writeOutputFile(opts.out, jsonOutput); err != nil {
			return err
		}
	}

	if a.cfg.Verbose {
		a.printer.PrintRanking(result)
	} else {
		printRankingTable(a, result)
	}

	if opts.save {
		ids, err := saveRanked(ctx, a, result, resumes)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %d candidates to %s\n", len(ids), a.cfg.DatabaseURL)
	}
	if opts.out != "" {
		fmt.Fprintf(a.out, "Wrote %d ranked candidates to %s\n", len(result.Ranked), opts.out)
	}
	return nil
}

func printRankingTable(a *app, result *types.RankedCandidates) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tBAND\tCATEGORY\tMISSING")
	for _, c := range result.Ranked {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%s\t%d\n", c.Rank, c.ID, c.Score, c.Band, c.Category, c.MissingSkillsCount)
	}
	_ = tw.Flush()
	for _, ex := range result.Excluded {
		fmt.Fprintf(a.out, "excluded #%d %q: %s\n", ex.Index, ex.ID, ex.Reason)
	}
}

// saveRanked stores the ranked candidates with contact details from their resumes.
func saveRanked(ctx context.Context, a *app, result *types.RankedCandidates, resumes []*ingestion.Resume) ([]int64, error) {
	byID := make(map[string]*ingestion.Resume, len(resumes))
	for _, r := range resumes {
		if _, ok := byID[r.Document.ID]; !ok {
			byID[r.Document.ID] = r
		}
	}

	applicants := make([]store.Applicant, 0, len(result.Ranked))
	for _, c := range result.Ranked {
		r := byID[c.ID]
		if r == nil {
			continue
		}
		applicant := store.FromRanked(c, r.Document.Text, a.taxonomy)
		applicant.Name = r.Contact.Name
		applicant.Email = r.Contact.Email
		applicant.Phone = r.Contact.Phone
		applicant.FilePath = r.Metadata.Path
		applicants = append(applicants, applicant)
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ids, err := st.SaveCandidates(ctx, applicants)
	if err != nil {
		return nil, fmt.Errorf("failed to save candidates: %w", err)
	}
	return ids, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
