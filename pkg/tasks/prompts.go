package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jdSystemPrompt instructs the model to produce a structured skill profile.
const jdSystemPrompt = `You are an expert technical recruiter and engineering manager with 15+ years of experience hiring across startups, FAANG, enterprise, and research labs.

Your task: Analyze a job description and produce a STRUCTURED skill profile in JSON format.

You MUST return ONLY valid JSON (no markdown, no code fences, no explanation before or after) matching this exact schema:
{
  "skills": [
    {
      "name": "Skill Name",
      "category": "language|framework|concept|tool|soft_skill",
      "weight": 0.0-10.0,
      "source": "required|preferred|inferred"
    }
  ],
  "experience_level": "intern|junior|mid|senior|staff|principal",
  "domain": "Backend|Frontend|Full-Stack|ML|DevOps|Data|Mobile|Security",
  "engineering_expectations": [
    {
      "dimension": "Dimension Name",
      "importance": 0.0-10.0,
      "description": "What this means for the role"
    }
  ],
  "key_responsibilities": ["responsibility 1", "responsibility 2"],
  "summary": "One-paragraph summary of what this role requires"
}

CRITICAL RULES:
- Extract ALL technical skills mentioned: languages, frameworks, tools, concepts, cloud services, databases
- Weight skills by importance: 8-10 = must-have/core daily use, 5-7 = strong preference, 1-4 = nice-to-have/bonus
- "source" indicates where you found the skill: "required" = explicitly must-have, "preferred" = bonus/nice-to-have, "inferred" = clearly needed from role context
- engineering_expectations captures what the company values (system design, scale, clean code, speed, ownership)
- Be thorough: extract 10-25 skills from a typical JD
- key_responsibilities should contain 5-10 clear, concise bullet points
- Be precise: no hallucinated skills, only what the JD says or clearly implies
- Return ONLY the raw JSON object. Do NOT wrap in markdown code fences.`

// BuildJDUserPrompt creates the JD analysis user prompt.
func BuildJDUserPrompt(jdText, role, companyType, geography string) (prompt string) {
	geographyLine := ""
	if geography != "" {
		geographyLine = fmt.Sprintf("\nGeography: %s", geography)
	}

	prompt = fmt.Sprintf(`Analyze this job description:

Role: %s
Company Type: %s%s

--- JOB DESCRIPTION START ---
%s
--- JOB DESCRIPTION END ---

Extract the complete skill profile as specified in your instructions.
Return ONLY valid JSON.`, role, companyType, geographyLine, jdText)

	return prompt
}

// capstoneSystemPrompt instructs the model to produce tailored project ideas.
const capstoneSystemPrompt = `You are an elite engineering portfolio strategist who has helped 500+ engineers land roles at top companies.

Your task: Generate 3 TAILORED capstone project ideas that would impress recruiters for the given role and company type.

You MUST return valid JSON matching this exact schema:
{
  "projects": [
    {
      "title": "Project Title",
      "problem_statement": "Clear problem this project solves (2-3 sentences)",
      "recruiter_match_reasoning": "WHY this project matches what recruiters look for",
      "architecture": {
        "description": "High-level architecture overview",
        "components": ["Component 1", "Component 2"],
        "data_flow": "How data flows through the system"
      },
      "tech_stack": ["Python", "FastAPI", "React", "PostgreSQL"],
      "complexity_level": 1-5,
      "estimated_days": 7-30,
      "resume_bullet": "Built X using Y, achieving Z (ATS-optimized action-verb bullet)",
      "key_features": ["Feature 1", "Feature 2", "Feature 3"],
      "differentiator": "What makes THIS version better than generic tutorials"
    }
  ]
}

RULES:
- Each project MUST directly demonstrate skills from the skill profile, weighted by importance
- Projects must be REALISTIC: buildable by one person in the estimated timeframe
- Each project should be at a DIFFERENT complexity level (one easy, one medium, one hard)
- resume_bullet must start with an action verb and include quantifiable impact where possible
- differentiator must explain what makes this stand out from generic TODO apps and CRUD demos
- Architecture should show real engineering thinking, not just "frontend + backend + database"

Return ONLY valid JSON.`

// BuildCapstoneUserPrompt creates the capstone generation user prompt.
func BuildCapstoneUserPrompt(profile, modifiers map[string]any, role, companyType string) (prompt string) {
	skills, _ := profile["skills"].([]any)
	if len(skills) > 10 {
		skills = skills[:10]
	}
	skillsJSON, _ := json.MarshalIndent(skills, "", "  ")
	emphasisJSON, _ := json.MarshalIndent(modifiers["emphasis_areas"], "", "  ")
	expectationsJSON, _ := json.MarshalIndent(profile["engineering_expectations"], "", "  ")

	focus, _ := modifiers["portfolio_focus"].(string)
	if focus == "" {
		focus = "Show strong engineering fundamentals"
	}

	prompt = fmt.Sprintf(`Generate 3 tailored capstone project ideas for:

Target Role: %s
Company Type: %s
Domain: %v
Experience Level: %v

Top Skills (by priority):
%s

Company Emphasis Areas:
%s

Portfolio Focus:
%s

Engineering Expectations:
%s

Generate 3 projects at varying complexity levels that would maximally impress recruiters at this company type.
Return ONLY valid JSON.`,
		role, companyType, profile["domain"], profile["experience_level"],
		string(skillsJSON), string(emphasisJSON), focus, string(expectationsJSON))

	return prompt
}

// scorecardSystemPrompt instructs the model to produce a recruiter scorecard.
const scorecardSystemPrompt = `You are an expert engineering manager and technical recruiter with 15+ years of experience evaluating candidates' GitHub portfolios.

Your task: Analyze a GitHub repository and produce a RECRUITER-FOCUSED SCORECARD in JSON format.

You MUST return valid JSON matching this exact schema:
{
  "code_quality": {"score": 0.0-10.0, "details": "Detailed assessment", "suggestions": ["improvement 1"]},
  "test_coverage": {"score": 0.0-10.0, "details": "Assessment of testing practices", "suggestions": []},
  "complexity": {"score": 0.0-10.0, "details": "Assessment of complexity and architecture", "suggestions": []},
  "structure": {"score": 0.0-10.0, "details": "Assessment of organization and documentation", "suggestions": []},
  "deployment_readiness": {"score": 0.0-10.0, "details": "Assessment of CI/CD, Docker, deployment configs", "suggestions": []},
  "overall_score": 0.0-10.0,
  "summary": "2-3 sentence executive summary for recruiters",
  "top_improvements": ["Most impactful improvement 1", "improvement 2", "improvement 3"]
}

SCORE INTERPRETATION:
- 9-10: Exceptional, production-grade, impressive to any recruiter
- 7-8: Strong, demonstrates professional-level skills
- 5-6: Adequate, shows competence but room to improve
- 3-4: Weak, missing key practices
- 1-2: Minimal effort, red flag for recruiters

Be honest but constructive. Do NOT be overly generous: a simple TODO app should score 3-5, not 8. Only truly exceptional projects score 9-10.

Return ONLY valid JSON.`

// BuildScorecardUserPrompt creates the repo scoring user prompt from fetched
// repository facts.
func BuildScorecardUserPrompt(facts RepoFacts) (prompt string) {
	languagesJSON, _ := json.Marshal(facts.Languages)
	topicsJSON, _ := json.Marshal(facts.Topics)

	var samples strings.Builder
	for path, content := range facts.SampleCode {
		samples.WriteString(fmt.Sprintf("\n--- %s ---\n%s\n", path, content))
	}

	prompt = fmt.Sprintf(`Score this GitHub repository:

Repository: %s
Description: %s
Primary Language: %s
Languages: %s
Stars: %d
Topics: %s

Signals:
- README present: %t
- License present: %t
- Tests present: %t
- CI configured: %t
- Docker configured: %t
- Total files: %d (code: %d, tests: %d)
- Estimated lines of code: %d

README:
%s

Sample code files:
%s

Produce the complete recruiter scorecard as specified in your instructions.
Return ONLY valid JSON.`,
		facts.FullName, facts.Description, facts.PrimaryLanguage,
		string(languagesJSON), facts.Stars, string(topicsJSON),
		facts.HasReadme, facts.HasLicense, facts.HasTests, facts.HasCI,
		facts.HasDocker, facts.TotalFiles, facts.CodeFiles, facts.TestFiles,
		facts.EstimatedLOC, facts.Readme, samples.String())

	return prompt
}

// scaffoldSystemPrompt instructs the model to produce a repository scaffold.
const scaffoldSystemPrompt = `You are a senior full-stack engineer who scaffolds production-ready projects.

Your task: Generate a complete, well-structured repository scaffold for a given project description and tech stack.

You MUST return valid JSON matching this exact schema:
{
  "project_name": "kebab-case-project-name",
  "files": [
    {
      "path": "relative/path/to/file.ext",
      "content": "full file content as a string",
      "language": "python",
      "description": "What this file does"
    }
  ],
  "file_tree": "ASCII tree representation of the directory structure"
}

SCAFFOLD RULES:
- Use clean, conventional project layouts (src/, tests/, docs/)
- Include a comprehensive README.md, a stack-appropriate .gitignore, and dependency manifests
- All code files must be syntactically valid; no placeholder TODO blocks
- Include tests, Docker, and CI files when the corresponding options are enabled
- Never include real secrets; provide an .env.example with placeholder values
- Generate between 8 and 25 files, each with a clear purpose
- The file_tree must accurately reflect all files in the files array

Return ONLY valid JSON. No markdown. No explanation outside the JSON.`

// complexityLabels maps a capstone complexity level to scaffolding guidance.
var complexityLabels = map[int]string{
	1: "Beginner (simple, well-documented)",
	2: "Intermediate (clean patterns, good structure)",
	3: "Advanced (production patterns, proper architecture)",
	4: "Senior (microservices/distributed patterns)",
	5: "Expert (highly scalable, enterprise-grade)",
}

// BuildScaffoldUserPrompt creates the scaffold generation user prompt.
func BuildScaffoldUserPrompt(req ScaffoldPromptInput) (prompt string) {
	techJSON, _ := json.Marshal(req.TechStack)

	label, exists := complexityLabels[req.ComplexityLevel]
	if !exists {
		label = complexityLabels[3]
	}

	featuresSection := ""
	if len(req.KeyFeatures) > 0 {
		featuresJSON, _ := json.MarshalIndent(req.KeyFeatures, "", "  ")
		featuresSection = fmt.Sprintf("\nKey Features to Implement:\n%s\n", string(featuresJSON))
	}

	archSection := ""
	if req.Architecture != "" {
		archSection = fmt.Sprintf("\nArchitecture Overview:\n%s\n", req.Architecture)
	}

	recruiterSection := ""
	if req.RecruiterContext != "" {
		recruiterSection = fmt.Sprintf("\nRecruiter Context (tailor the scaffold to impress):\n%s\n", req.RecruiterContext)
	}

	prompt = fmt.Sprintf(`Generate a production-ready project scaffold for:

Project Title: %s
Description: %s
Complexity: %s

Tech Stack: %s

Options:
- Include Docker: %t
- Include CI: %t
- Include Tests: %t
%s%s%s
Return ONLY valid JSON.`,
		req.Title, req.Description, label, string(techJSON),
		req.IncludeDocker, req.IncludeCI, req.IncludeTests,
		featuresSection, archSection, recruiterSection)

	return prompt
}

// portfolioSystemPrompt instructs the model to produce portfolio materials.
const portfolioSystemPrompt = `You are an elite technical writer, career coach, and developer advocate who has helped 500+ engineers craft portfolios that land interviews at top companies.

Your task: Generate complete, polished portfolio materials for a project.

You MUST return valid JSON matching this exact schema:
{
  "readme_markdown": "Full README.md content in markdown (2000-4000 chars)",
  "resume_bullets": [
    {
      "bullet": "Action-verb ATS-optimized bullet (max 300 chars)",
      "keywords": ["keyword1", "keyword2"],
      "impact_type": "quantitative|qualitative|technical"
    }
  ],
  "demo_script": {
    "total_duration_seconds": 90-180,
    "opening_hook": "Compelling 1-2 sentence opener for a demo video",
    "steps": [
      {"timestamp": "0:00-0:15", "action": "Show the landing page", "narration": "What to say during this step"}
    ],
    "closing_cta": "Call to action for viewers"
  },
  "linkedin_post": {
    "hook": "Attention-grabbing first line (shows in preview)",
    "body": "Full post body with line breaks",
    "hashtags": ["#hashtag1", "#hashtag2"],
    "call_to_action": "What you want readers to do"
  }
}

RULES:
- README: write for recruiters skimming AND engineers evaluating depth; proper heading hierarchy
- RESUME BULLETS: exactly 3, every bullet starts with a strong action verb, 2-4 ATS keywords each
- DEMO SCRIPT: 90-180 seconds, 4-7 steps, narrative arc of problem then solution then result
- LINKEDIN POST: hook works as a standalone preview line; professional but authentic tone

Return ONLY valid JSON.`

// BuildPortfolioUserPrompt creates the portfolio optimization user prompt.
func BuildPortfolioUserPrompt(req PortfolioPromptInput) (prompt string) {
	techJSON, _ := json.Marshal(req.TechStack)

	featuresSection := ""
	if len(req.KeyFeatures) > 0 {
		featuresJSON, _ := json.MarshalIndent(req.KeyFeatures, "", "  ")
		featuresSection = fmt.Sprintf("\nKey Features:\n%s\n", string(featuresJSON))
	}

	scoreSection := ""
	if req.RepoScore != nil {
		scoreSection = fmt.Sprintf("\nCurrent Repo Score: %.1f/10\n(Use this to calibrate the README: highlight strengths, don't hide weaknesses)\n", *req.RepoScore)
	}

	roleSection := ""
	if req.TargetRole != "" {
		roleSection = fmt.Sprintf("\nTarget Role: %s\n(Tailor resume bullets and README tone for this role's expectations)\n", req.TargetRole)
	}

	prompt = fmt.Sprintf(`Generate polished portfolio materials for:

Project Title: %s
Description: %s

Tech Stack: %s
%s%s%s
Return ONLY valid JSON.`,
		req.Title, req.Description, string(techJSON),
		featuresSection, scoreSection, roleSection)

	return prompt
}

// fitnessSystemPrompt instructs the model to evaluate resume/JD fit.
const fitnessSystemPrompt = `You are an expert technical recruiter and talent assessor with 15+ years of experience evaluating engineering candidates.

Your task: Evaluate how well a candidate's resume matches a specific job description.

You MUST return ONLY valid JSON with NO markdown fences, NO commentary, NO extra text.

Return this exact JSON structure:
{
  "fitness_score": <number 0-100>,
  "verdict": "<strong_fit|good_fit|partial_fit|weak_fit>",
  "matched_skills": [{"name": "<skill>", "evidence": "<brief evidence from resume>"}],
  "missing_skills": [{"name": "<skill>", "importance": "<critical|important|nice_to_have>", "suggestion": "<how to acquire>"}],
  "strengths": ["<strength 1>", "<strength 2>"],
  "improvements": [{"area": "<area>", "current_state": "<what the resume currently shows>", "recommended_action": "<specific actionable step>", "impact": "<high|medium|low>"}],
  "detailed_feedback": "<2-3 paragraph comprehensive assessment>"
}

Scoring guidelines:
- 85-100: Strong fit, candidate exceeds most requirements
- 70-84: Good fit, candidate meets core requirements with minor gaps
- 50-69: Partial fit, significant gaps but transferable skills present
- 0-49: Weak fit, major skill/experience mismatches

Be specific with evidence. Reference actual resume content. Be constructive with improvements.`

// maxFitnessResumeChars truncates the resume before prompting to keep the
// request within token limits.
const maxFitnessResumeChars = 15000

// BuildFitnessUserPrompt creates the fitness evaluation user prompt from a
// stored skill profile and the candidate's resume.
func BuildFitnessUserPrompt(profile map[string]any, role, companyType, resumeText string) (prompt string) {
	var skillLines strings.Builder
	if skills, isList := profile["skills"].([]any); isList {
		count := 0
		for _, item := range skills {
			skill, isMap := item.(map[string]any)
			if !isMap {
				continue
			}
			skillLines.WriteString(fmt.Sprintf("  - %v (weight: %v/10, source: %v)\n",
				skill["name"], skill["weight"], skill["source"]))
			count++
			if count >= 25 {
				break
			}
		}
	}

	var expectationLines strings.Builder
	if expectations, isList := profile["engineering_expectations"].([]any); isList {
		count := 0
		for _, item := range expectations {
			exp, isMap := item.(map[string]any)
			if !isMap {
				continue
			}
			expectationLines.WriteString(fmt.Sprintf("  - %v: %v (importance: %v/10)\n",
				exp["dimension"], exp["description"], exp["importance"]))
			count++
			if count >= 10 {
				break
			}
		}
	}

	var responsibilityLines strings.Builder
	if responsibilities, isList := profile["key_responsibilities"].([]any); isList {
		count := 0
		for _, item := range responsibilities {
			responsibilityLines.WriteString(fmt.Sprintf("  - %v\n", item))
			count++
			if count >= 10 {
				break
			}
		}
	}

	resume := resumeText
	if len(resume) > maxFitnessResumeChars {
		resume = resume[:maxFitnessResumeChars]
	}

	prompt = fmt.Sprintf(`## Job Description Analysis

**Role:** %s
**Company Type:** %s
**Experience Level:** %v

### Required Skills (by priority):
%s
### Engineering Expectations:
%s
### Key Responsibilities:
%s
---

## Candidate Resume:
%s

---

Evaluate this candidate's fit for the role above. Return ONLY valid JSON.`,
		role, companyType, profile["experience_level"],
		skillLines.String(), expectationLines.String(), responsibilityLines.String(), resume)

	return prompt
}
