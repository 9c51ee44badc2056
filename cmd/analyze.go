package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shortlist-ai/shortlist/pkg/engine"
	"github.com/shortlist-ai/shortlist/pkg/github"
	"github.com/shortlist-ai/shortlist/pkg/jd"
	"github.com/shortlist-ai/shortlist/pkg/llm"
	"github.com/shortlist-ai/shortlist/pkg/pipeline"
	"github.com/shortlist-ai/shortlist/pkg/store"
	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeRole string

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCompanyType string

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeGeography string

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze <jd-file-or-url>",
	Short: "Analyze a job description from the command line",
	Long: `Run the analysis pipeline on a job description and print the result as
JSON. Useful for scripting and for inspecting the pipeline without the HTTP
server.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)

Example:
  shortlist analyze jd.txt --role "Backend Engineer" --company-type startup
  shortlist analyze https://example.com/jobs/123 --role "SRE" --company-type faang`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Target role title (required)")
	analyzeCmd.Flags().StringVar(&analyzeCompanyType, "company-type", tasks.DefaultCompanyType, "Company archetype (startup, mid_level, faang, research, enterprise)")
	analyzeCmd.Flags().StringVar(&analyzeGeography, "geography", "", "Optional geography hint")
	analyzeCmd.MarkFlagRequired("role") //nolint:errcheck // flag exists
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logger, err := buildLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	jdText, err := jd.Load(ctx, args[0])
	if err != nil {
		return err
	}

	// One-shot runs keep results in memory only.
	st, err := store.Open(":memory:")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck // closed on exit

	client := llm.NewClient(settings.GroqAPIKey, settings.LLMEndpoint, settings.LLMModel, logger)
	eng := engine.New(client, logger)
	analyzer := github.NewAnalyzer(settings.GitHubToken, "", logger)
	p := pipeline.New(eng, tasks.NewRegistry(), analyzer, st, logger)

	record, err := p.AnalyzeJD(ctx, pipeline.AnalyzeRequest{
		JDText:      jdText,
		Role:        analyzeRole,
		CompanyType: analyzeCompanyType,
		Geography:   analyzeGeography,
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to encode result")
		return err
	}
	fmt.Println(string(encoded))

	return err
}
