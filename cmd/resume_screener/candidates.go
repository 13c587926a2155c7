package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/jonathan/resume-screener/internal/store"
	"github.com/spf13/cobra"
)

func newCandidatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Manage screened candidates in the store",
	}
	cmd.AddCommand(
		newCandidatesSaveCmd(a),
		newCandidatesListCmd(a),
		newCandidatesSearchCmd(a),
		newCandidatesShowCmd(a),
		newCandidatesDeleteCmd(a),
		newCandidatesStatsCmd(a),
		newCandidatesClearCmd(a),
	)
	return cmd
}

func newCandidatesSaveCmd(a *app) *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Rank resumes against a job description and store the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.topNSet = cmd.Flags().Changed("top-n")
			result, resumes, err := rankResumes(cmd.Context(), a, opts)
			if err != nil {
				return err
			}
			ids, err := saveRanked(cmd.Context(), a, result, resumes)
			if err != nil {
				return err
			}
			printRankingTable(a, result)
			fmt.Fprintf(a.out, "Saved %d candidates to %s\n", len(ids), a.cfg.DatabaseURL)
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func newCandidatesListCmd(a *app) *cobra.Command {
	var (
		byScore bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			applicants, err := st.List(cmd.Context(), store.ListOptions{OrderByScore: byScore, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list candidates: %w", err)
			}
			return printApplicants(a, applicants)
		},
	}
	cmd.Flags().BoolVar(&byScore, "by-score", false, "Order by score, best first")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 for all)")
	return cmd
}

func newCandidatesSearchCmd(a *app) *cobra.Command {
	var minScore float64
	cmd := &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Search candidates by name, email or resume text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			applicants, err := st.Search(cmd.Context(), args[0], minScore)
			if err != nil {
				return fmt.Errorf("failed to search candidates: %w", err)
			}
			return printApplicants(a, applicants)
		},
	}
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Only candidates scoring at least this")
	return cmd
}

func newCandidatesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one candidate as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			applicant, err := st.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get candidate: %w", err)
			}
			if applicant == nil {
				return fmt.Errorf("candidate %d not found", id)
			}
			data, err := jsonIndent(applicant)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(data))
			return nil
		},
	}
}

func newCandidatesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a candidate and its skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			deleted, err := st.Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete candidate: %w", err)
			}
			if !deleted {
				return fmt.Errorf("candidate %d not found", id)
			}
			fmt.Fprintf(a.out, "Deleted candidate %d\n", id)
			return nil
		},
	}
}

func newCandidatesStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show applicant statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Statistics(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}
			a.printer.PrintStatistics(stats)
			return nil
		},
	}
}

func newCandidatesClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored candidate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the store without --yes")
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear store: %w", err)
			}
			fmt.Fprintln(a.out, "Cleared all candidates")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func printApplicants(a *app, applicants []store.Applicant) error {
	if len(applicants) == 0 {
		fmt.Fprintln(a.out, "No candidates found")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCATEGORY\tSCORE\tMISSING")
	for _, ap := range applicants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3f\t%s\n", ap.ID, ap.Name, ap.Email, ap.Category, ap.Score, ap.MissingSkills)
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid candidate ID %q", s)
	}
	return id, nil
}
