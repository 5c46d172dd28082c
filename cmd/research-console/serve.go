// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-console/internal/acquire"
	"github.com/pdiddy/research-console/internal/httputil"
	"github.com/pdiddy/research-console/internal/index"
	"github.com/pdiddy/research-console/internal/llm"
	"github.com/pdiddy/research-console/internal/logging"
	"github.com/pdiddy/research-console/internal/research"
	"github.com/pdiddy/research-console/internal/search"
	"github.com/pdiddy/research-console/internal/server"
	"github.com/pdiddy/research-console/pkg/types"
)

const (
	defaultAddr      = "127.0.0.1:5000"
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "research-console/0.1"
	shutdownTimeout  = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local research service",
	Long: `Serve answers POST /research: it searches arXiv for the query, downloads
the papers, indexes their text in a per-query SQLite database and asks the
chosen Groq model the research question.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", defaultAddr, "listen address")
	serveCmd.Flags().String("papers-dir", research.DefaultPapersDir, "directory for downloaded papers")
	serveCmd.Flags().String("index-dir", research.DefaultIndexDir, "directory for per-query indexes")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive downloads")
	for _, name := range []string{"addr", "papers-dir", "index-dir", "log-level", "delay"} {
		viper.BindPFlag("serve."+name, serveCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(serveCmd)
}

// serviceConfig reads the service settings from viper.
func serviceConfig() types.ServiceConfig {
	httpCfg := types.HTTPConfig{Timeout: defaultTimeout, UserAgent: defaultUserAgent}
	return types.ServiceConfig{
		Addr:     viper.GetString("serve.addr"),
		LogLevel: viper.GetString("serve.log-level"),
		Search: types.SearchConfig{
			HTTPConfig: httpCfg,
			MaxResults: int(types.DefaultMaxResults),
		},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig:    httpCfg,
			DownloadDelay: viper.GetDuration("serve.delay"),
			PapersDir:     viper.GetString("serve.papers-dir"),
		},
		Index: types.IndexConfig{
			IndexDir:     viper.GetString("serve.index-dir"),
			ChunkSize:    index.DefaultChunkSize,
			ChunkOverlap: index.DefaultChunkOverlap,
			TopK:         index.DefaultTopK,
		},
		AI: types.AIConfig{Temperature: llm.DefaultTemperature},
	}
}

// newWorkflow wires the service stages from cfg.
func newWorkflow(cfg types.ServiceConfig, log *logrus.Logger) *research.Workflow {
	httpClient := &http.Client{Timeout: cfg.Search.Timeout}

	return &research.Workflow{
		Searcher: &search.ArxivBackend{
			Retrier: &httputil.Retrier{Client: httpClient, MaxRetries: cfg.Search.MaxRetries, Log: log},
			Config:  cfg.Search,
		},
		Downloader: &acquire.Downloader{
			Client: &http.Client{Timeout: cfg.Acquisition.Timeout},
			Config: cfg.Acquisition,
			Log:    log,
		},
		Indexer: &index.Builder{Config: cfg.Index, Log: log},
		NewAnswerer: func(key string, model types.ModelName) llm.Answerer {
			return &llm.Groq{
				APIKey:      key,
				Model:       string(model),
				BaseURL:     cfg.AI.BaseURL,
				Temperature: cfg.AI.Temperature,
			}
		},
		PapersDir: cfg.Acquisition.PapersDir,
		IndexDir:  cfg.Index.IndexDir,
		TopK:      cfg.Index.TopK,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	log := logging.New(os.Stderr, cfg.LogLevel)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.New(newWorkflow(cfg, log), log),
		ReadTimeout:  time.Minute,
		WriteTimeout: 15 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("research service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
