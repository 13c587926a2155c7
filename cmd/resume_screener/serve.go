package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server exposing ranking, skill extraction, classification and candidate endpoints.
The classifier bundle is loaded from --model-dir when present and can be reloaded with POST /v1/model/reload.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = a.cfg.Addr
			}

			model := a.loadModel(a.cfg.ModelDir)
			cfg := server.Config{
				Addr:     addr,
				ModelDir: a.cfg.ModelDir,
				TopN:     a.cfg.TopN,
				Workers:  a.cfg.Workers,
				Models:   classifier.NewHolder(model),
				Ranker:   a.ranker(),
				Fetcher:  fetch.NewCachedFetcher(fetch.HTTPFetcher{}, fetch.CachedFetcherConfig{}),
				Render:   a.renderer(),
				Logger:   a.logger,
			}
			if !noStore {
				st, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				cfg.Store = st
			}

			srv, err := server.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Run without candidate storage")
	return cmd
}
