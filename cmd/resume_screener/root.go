package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/store"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	printer  *observability.Printer
	out      io.Writer
	taxonomy *skills.Taxonomy
}

type rootOptions struct {
	configPath  string
	databaseURL string
	modelDir    string
	taxonomy    string
	logLevel    string
	logFormat   string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "resume_screener",
		Short: "Rank resumes against job descriptions",
		Long: `resume_screener scores resumes against a job description using keyword overlap and a skill taxonomy,
predicts each resume's job category with a trained classifier, and keeps screened candidates in SQLite or PostgreSQL.

Configuration can be loaded from a JSON file using --config. Environment variables (SCREENER_*, DATABASE_URL)
override the file, and command-line flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config.json file")
	flags.StringVar(&opts.databaseURL, "db", "", "SQLite path or postgres:// URL for candidate storage")
	flags.StringVar(&opts.modelDir, "model-dir", "", "Classifier bundle directory")
	flags.StringVar(&opts.taxonomy, "taxonomy", "", "Skill taxonomy YAML file (default: built-in taxonomy)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print formatted summaries")

	cmd.AddCommand(
		newRankCmd(a),
		newSkillsCmd(a),
		newTrainCmd(a),
		newClassifyCmd(a),
		newCandidatesCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabaseURL = opts.databaseURL
	}
	if flags.Changed("model-dir") {
		cfg.ModelDir = opts.modelDir
	}
	if flags.Changed("taxonomy") {
		cfg.Taxonomy = opts.taxonomy
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	taxonomy := skills.Default()
	if cfg.Taxonomy != "" {
		if taxonomy, err = skills.LoadTaxonomy(cfg.Taxonomy); err != nil {
			return fmt.Errorf("failed to load skill taxonomy: %w", err)
		}
		logger.Debug("skill taxonomy loaded", slog.String("path", cfg.Taxonomy), slog.Int("skills", taxonomy.Size()))
	}

	a.cfg = cfg
	a.taxonomy = taxonomy
	a.logger = logger
	a.out = cmd.OutOrStdout()
	a.printer = observability.NewPrinter(a.out)
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate store: %w", err)
	}
	return st, nil
}

// loadModel loads the classifier bundle for ranking. Any failure is logged and
// yields nil, so ranking carries on without category predictions.
func (a *app) loadModel(dir string) *classifier.Model {
	model, err := classifier.Load(dir)
	if err != nil {
		var notFound *classifier.NotFoundError
		if errors.As(err, &notFound) {
			a.logger.Warn("no classifier model found, categories will be Unknown", slog.String("dir", dir))
		} else {
			a.logger.Warn("classifier unavailable, categories will be Unknown", slog.String("dir", dir), slog.Any("error", err))
		}
		return nil
	}
	a.logger.Debug("classifier loaded",
		slog.String("bundle_id", model.BundleID().String()),
		slog.Int("classes", len(model.Classes())),
	)
	return model
}

// ranker builds a ranker over the configured taxonomy.
func (a *app) ranker() *ranking.Ranker {
	return ranking.NewRanker(ranking.NewScorer(nil, a.taxonomy), a.logger)
}

// renderer returns the headless browser fallback when enabled.
func (a *app) renderer() fetch.Renderer {
	if !a.cfg.UseBrowser {
		return nil
	}
	return fetch.BrowserRenderer(60*time.Second, a.logger)
}

// loadJobDescription reads the job description from a file or fetches it from a URL.
func (a *app) loadJobDescription(ctx context.Context, path, url string) (string, error) {
	switch {
	case path != "" && url != "":
		return "", errors.New("--jd and --jd-url are mutually exclusive")
	case url != "":
		text, _, err := ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{
			Render: a.renderer(),
			Logger: a.logger,
		})
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, nil
	case path != "":
		jd, err := ingestion.LoadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to load job description: %w", err)
		}
		return jd.Document.Text, nil
	default:
		return "", errors.New("one of --jd or --jd-url is required")
	}
}

func writeOutputFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	return writeOutputFile(path, data)
}

func jsonIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}
