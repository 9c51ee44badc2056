package tasks

// RepoFacts is the deterministic summary of a fetched GitHub repository that
// feeds the scorecard prompt.
type RepoFacts struct {
	FullName        string            `json:"full_name"`
	Description     string            `json:"description"`
	PrimaryLanguage string            `json:"primary_language"`
	Languages       map[string]int64  `json:"languages"`
	Stars           int               `json:"stars"`
	Forks           int               `json:"forks"`
	Topics          []string          `json:"topics"`
	HasReadme       bool              `json:"has_readme"`
	HasLicense      bool              `json:"has_license"`
	HasTests        bool              `json:"has_tests"`
	HasCI           bool              `json:"has_ci"`
	HasDocker       bool              `json:"has_docker"`
	TotalFiles      int               `json:"total_files"`
	CodeFiles       int               `json:"code_files"`
	TestFiles       int               `json:"test_files"`
	EstimatedLOC    int               `json:"estimated_loc"`
	Readme          string            `json:"readme"`
	SampleCode      map[string]string `json:"sample_code"`
}

// ScaffoldPromptInput collects everything the scaffold prompt needs about the
// project being scaffolded.
type ScaffoldPromptInput struct {
	Title            string
	Description      string
	TechStack        []string
	ComplexityLevel  int
	KeyFeatures      []string
	Architecture     string
	RecruiterContext string
	IncludeDocker    bool
	IncludeCI        bool
	IncludeTests     bool
}

// PortfolioPromptInput collects everything the portfolio prompt needs about
// the project being marketed.
type PortfolioPromptInput struct {
	Title       string
	Description string
	TechStack   []string
	KeyFeatures []string
	RepoScore   *float64
	TargetRole  string
}
