package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shortlist-ai/shortlist/pkg/engine"
	"github.com/shortlist-ai/shortlist/pkg/github"
	"github.com/shortlist-ai/shortlist/pkg/llm"
	"github.com/shortlist-ai/shortlist/pkg/pipeline"
	"github.com/shortlist-ai/shortlist/pkg/server"
	"github.com/shortlist-ai/shortlist/pkg/store"
	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API server.

Example:
  shortlist serve
  SHORTLIST_LISTEN_ADDR=:9000 shortlist serve --verbose`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logger, err := buildLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	st, err := store.Open(settings.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck // closed on exit

	client := llm.NewClient(settings.GroqAPIKey, settings.LLMEndpoint, settings.LLMModel, logger)
	eng := engine.New(client, logger)
	registry := tasks.NewRegistry()
	analyzer := github.NewAnalyzer(settings.GitHubToken, "", logger)
	p := pipeline.New(eng, registry, analyzer, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(settings, p, st, logger)
	err = srv.Run(ctx)
	return err
}
