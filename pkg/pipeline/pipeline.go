// Package pipeline orchestrates the generation flows: each operation runs one
// or more tasks through the engine, persists the outcome, and returns the
// stored record.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shortlist-ai/shortlist/pkg/engine"
	"github.com/shortlist-ai/shortlist/pkg/github"
	"github.com/shortlist-ai/shortlist/pkg/store"
	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

// Pipeline wires the task engine, GitHub analyzer, and store together.
type Pipeline struct {
	engine   *engine.Engine
	registry *tasks.Registry
	analyzer *github.Analyzer
	store    *store.Store
	logger   *zap.Logger
}

// New creates a pipeline.
func New(eng *engine.Engine, registry *tasks.Registry, analyzer *github.Analyzer, st *store.Store, logger *zap.Logger) (p *Pipeline) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p = &Pipeline{
		engine:   eng,
		registry: registry,
		analyzer: analyzer,
		store:    st,
		logger:   logger,
	}
	return p
}

// AnalyzeRequest carries one JD analysis job.
type AnalyzeRequest struct {
	JDText      string `json:"jd_text" binding:"required,min=50,max=15000"`
	Role        string `json:"role" binding:"required,min=2,max=200"`
	CompanyType string `json:"company_type" binding:"required"`
	Geography   string `json:"geography" binding:"omitempty,max=120"`
}

// AnalyzeJD runs the full analysis flow: skill profile extraction, company
// modifier application, then capstone generation. When the profile comes back
// without any usable skills, the capstone model call is skipped and its
// deterministic fallback is stored instead.
func (p *Pipeline) AnalyzeJD(ctx context.Context, req AnalyzeRequest) (record store.Record, err error) {
	started := time.Now()
	id, err := p.store.Create(ctx, store.KindAnalysis, "")
	if err != nil {
		return record, err
	}

	profile, err := p.engine.Generate(ctx, p.registry.JDAnalysis,
		tasks.BuildJDUserPrompt(req.JDText, req.Role, req.CompanyType, req.Geography))
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}

	profile, modifier := tasks.ApplyCompanyModifiers(profile, req.CompanyType)

	var projects map[string]any
	if profileHasSkills(profile) {
		projects, err = p.engine.Generate(ctx, p.registry.Capstone,
			tasks.BuildCapstoneUserPrompt(profile, modifier.Map(), req.Role, req.CompanyType))
		if err != nil {
			return record, p.fail(ctx, id, err, started)
		}
	} else {
		p.logger.Warn("skill profile empty, skipping capstone generation",
			zap.String("analysis_id", id))
		projects = engine.Fallback(p.registry.Capstone.Schema)
	}

	payload := map[string]any{
		"role":              req.Role,
		"company_type":      modifier.CompanyType,
		"skill_profile":     profile,
		"company_modifiers": modifier.Map(),
		"capstone_projects": projects["projects"],
	}
	return p.complete(ctx, id, payload, started)
}

// ScorecardRequest carries one repository scoring job.
type ScorecardRequest struct {
	RepoURL string `json:"repo_url" binding:"required"`
}

// AnalyzeRepo fetches repository facts and scores them into a recruiter
// scorecard.
func (p *Pipeline) AnalyzeRepo(ctx context.Context, req ScorecardRequest) (record store.Record, err error) {
	started := time.Now()
	id, err := p.store.Create(ctx, store.KindScorecard, "")
	if err != nil {
		return record, err
	}

	facts, err := p.analyzer.Analyze(ctx, req.RepoURL)
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}

	scorecard, err := p.engine.Generate(ctx, p.registry.Scorecard, tasks.BuildScorecardUserPrompt(facts))
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}

	payload := map[string]any{
		"repo": map[string]any{
			"full_name":        facts.FullName,
			"description":      facts.Description,
			"primary_language": facts.PrimaryLanguage,
			"stars":            facts.Stars,
			"has_tests":        facts.HasTests,
			"has_ci":           facts.HasCI,
			"has_docker":       facts.HasDocker,
			"total_files":      facts.TotalFiles,
			"estimated_loc":    facts.EstimatedLOC,
		},
		"scorecard": scorecard,
	}
	return p.complete(ctx, id, payload, started)
}

// ScaffoldRequest carries one scaffold generation job.
type ScaffoldRequest struct {
	AnalysisID       string   `json:"analysis_id"`
	Title            string   `json:"title" binding:"required,min=2,max=200"`
	Description      string   `json:"description" binding:"required,max=5000"`
	TechStack        []string `json:"tech_stack" binding:"required,min=1,max=20"`
	ComplexityLevel  int      `json:"complexity_level"`
	KeyFeatures      []string `json:"key_features"`
	Architecture     string   `json:"architecture"`
	RecruiterContext string   `json:"recruiter_context"`
	IncludeDocker    bool     `json:"include_docker"`
	IncludeCI        bool     `json:"include_ci"`
	IncludeTests     bool     `json:"include_tests"`
}

// GenerateScaffold produces a filtered, budget-bounded repository scaffold.
func (p *Pipeline) GenerateScaffold(ctx context.Context, req ScaffoldRequest) (record store.Record, err error) {
	started := time.Now()
	id, err := p.store.Create(ctx, store.KindScaffold, req.AnalysisID)
	if err != nil {
		return record, err
	}

	result, err := p.engine.Generate(ctx, p.registry.Scaffold, tasks.BuildScaffoldUserPrompt(tasks.ScaffoldPromptInput{
		Title:            req.Title,
		Description:      req.Description,
		TechStack:        req.TechStack,
		ComplexityLevel:  req.ComplexityLevel,
		KeyFeatures:      req.KeyFeatures,
		Architecture:     req.Architecture,
		RecruiterContext: req.RecruiterContext,
		IncludeDocker:    req.IncludeDocker,
		IncludeCI:        req.IncludeCI,
		IncludeTests:     req.IncludeTests,
	}))
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}
	return p.complete(ctx, id, result, started)
}

// PortfolioRequest carries one portfolio optimization job.
type PortfolioRequest struct {
	AnalysisID  string   `json:"analysis_id"`
	Title       string   `json:"title" binding:"required,min=2,max=200"`
	Description string   `json:"description" binding:"required,max=5000"`
	TechStack   []string `json:"tech_stack" binding:"required,min=1,max=20"`
	KeyFeatures []string `json:"key_features"`
	RepoScore   *float64 `json:"repo_score"`
	TargetRole  string   `json:"target_role"`
}

// OptimizePortfolio produces README, resume bullets, demo script, and
// LinkedIn post for a project.
func (p *Pipeline) OptimizePortfolio(ctx context.Context, req PortfolioRequest) (record store.Record, err error) {
	started := time.Now()
	id, err := p.store.Create(ctx, store.KindPortfolio, req.AnalysisID)
	if err != nil {
		return record, err
	}

	result, err := p.engine.Generate(ctx, p.registry.Portfolio, tasks.BuildPortfolioUserPrompt(tasks.PortfolioPromptInput{
		Title:       req.Title,
		Description: req.Description,
		TechStack:   req.TechStack,
		KeyFeatures: req.KeyFeatures,
		RepoScore:   req.RepoScore,
		TargetRole:  req.TargetRole,
	}))
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}
	return p.complete(ctx, id, result, started)
}

// FitnessRequest carries one resume fitness evaluation job.
type FitnessRequest struct {
	AnalysisID string `json:"analysis_id" binding:"required"`
	ResumeText string `json:"resume_text" binding:"required,min=50,max=30000"`
}

// ScoreFitness evaluates a resume against a previously stored JD analysis.
func (p *Pipeline) ScoreFitness(ctx context.Context, req FitnessRequest) (record store.Record, err error) {
	started := time.Now()

	analysis, err := p.store.Get(ctx, req.AnalysisID)
	if err != nil {
		err = errors.Wrapf(err, "analysis %s", req.AnalysisID)
		return record, err
	}
	if analysis.Kind != store.KindAnalysis || analysis.Status != store.StatusComplete {
		err = errors.Errorf("record %s is not a completed analysis", req.AnalysisID)
		return record, err
	}

	profile, _ := analysis.Payload["skill_profile"].(map[string]any)
	role, _ := analysis.Payload["role"].(string)
	companyType, _ := analysis.Payload["company_type"].(string)

	id, err := p.store.Create(ctx, store.KindFitness, req.AnalysisID)
	if err != nil {
		return record, err
	}

	result, err := p.engine.Generate(ctx, p.registry.Fitness,
		tasks.BuildFitnessUserPrompt(profile, role, companyType, req.ResumeText))
	if err != nil {
		return record, p.fail(ctx, id, err, started)
	}
	return p.complete(ctx, id, result, started)
}

// Get retrieves a stored record, re-sanitizing payloads of known kinds so a
// reader always sees schema-conformant data regardless of what an older
// version wrote.
func (p *Pipeline) Get(ctx context.Context, id string) (record store.Record, err error) {
	record, err = p.store.Get(ctx, id)
	if err != nil {
		return record, err
	}
	p.resanitize(&record)
	return record, err
}

// List retrieves stored records of one kind.
func (p *Pipeline) List(ctx context.Context, kind string, limit int) (records []store.Record, err error) {
	records, err = p.store.List(ctx, kind, limit)
	if err != nil {
		return records, err
	}
	for i := range records {
		p.resanitize(&records[i])
	}
	return records, err
}

// Delete removes a stored record.
func (p *Pipeline) Delete(ctx context.Context, id string) (err error) {
	err = p.store.Delete(ctx, id)
	return err
}

// resanitize re-runs the sanitizer over a completed record's payload when the
// record kind maps to a single task schema. Sanitization is idempotent, so
// freshly written records pass through unchanged.
func (p *Pipeline) resanitize(record *store.Record) {
	if record.Status != store.StatusComplete || record.Payload == nil {
		return
	}

	var schema *engine.Object
	switch record.Kind {
	case store.KindScaffold:
		schema = p.registry.Scaffold.Schema
	case store.KindPortfolio:
		schema = p.registry.Portfolio.Schema
	case store.KindFitness:
		schema = p.registry.Fitness.Schema
	default:
		return
	}

	clean, diags := engine.Sanitize(record.Payload, schema)
	if len(diags) > 0 {
		p.logger.Warn("stored payload re-sanitized",
			zap.String("record_id", record.ID),
			zap.Int("diagnostics", len(diags)))
	}
	record.Payload = clean
}

// complete persists a successful result and returns the stored record.
func (p *Pipeline) complete(ctx context.Context, id string, payload map[string]any, started time.Time) (record store.Record, err error) {
	err = p.store.Complete(ctx, id, payload, time.Since(started))
	if err != nil {
		return record, err
	}
	record, err = p.store.Get(ctx, id)
	return record, err
}

// fail persists a failed run and returns the original cause.
func (p *Pipeline) fail(ctx context.Context, id string, cause error, started time.Time) (err error) {
	if storeErr := p.store.Fail(ctx, id, cause.Error(), time.Since(started)); storeErr != nil {
		p.logger.Error("failed to record failure",
			zap.String("record_id", id),
			zap.Error(storeErr))
	}
	err = errors.Wrapf(cause, "run %s failed", id)
	return err
}

// profileHasSkills reports whether the sanitized profile contains at least
// one skill.
func profileHasSkills(profile map[string]any) (has bool) {
	skills, isList := profile["skills"].([]any)
	has = isList && len(skills) > 0
	return has
}
