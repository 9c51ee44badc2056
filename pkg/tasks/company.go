package tasks

import (
	"sort"
	"strings"
)

// CompanyModifier is one company archetype's deterministic rule set. No model
// call is involved: the rules are explicit and auditable.
type CompanyModifier struct {
	CompanyType       string             `json:"company_type"`
	EmphasisAreas     []string           `json:"emphasis_areas"`
	WeightAdjustments map[string]float64 `json:"weight_adjustments"`
	PortfolioFocus    string             `json:"portfolio_focus"`
}

// DefaultCompanyType is used when the requested archetype is unknown.
const DefaultCompanyType = "mid_level"

// companyModifiers maps each supported archetype to its rule set.
var companyModifiers = map[string]CompanyModifier{
	"startup": {
		CompanyType: "startup",
		EmphasisAreas: []string{
			"Shipping speed", "Full-stack capability", "MVP mindset",
			"Wearing multiple hats", "Rapid iteration",
		},
		WeightAdjustments: map[string]float64{
			"full-stack":     3.0,
			"shipping speed": 3.0,
			"react":          1.5,
			"fastapi":        1.5,
			"docker":         2.0,
			"ci/cd":          1.5,
			"system design":  -1.0,
		},
		PortfolioFocus: "Show end-to-end projects shipped solo. " +
			"Emphasize speed, deployment, and user-facing features.",
	},
	"mid_level": {
		CompanyType: "mid_level",
		EmphasisAreas: []string{
			"Clean architecture", "Code quality", "Testing",
			"Design patterns", "Team collaboration",
		},
		WeightAdjustments: map[string]float64{
			"clean code":      3.0,
			"testing":         2.5,
			"design patterns": 2.0,
			"code review":     1.5,
			"documentation":   1.5,
		},
		PortfolioFocus: "Show well-structured projects with tests, CI, and clean code. " +
			"Emphasize maintainability, modularity, and code quality metrics.",
	},
	"faang": {
		CompanyType: "faang",
		EmphasisAreas: []string{
			"System design", "Scalability", "Data structures & algorithms",
			"Distributed systems", "Performance optimization",
		},
		WeightAdjustments: map[string]float64{
			"system design":       4.0,
			"scalability":         3.5,
			"algorithms":          3.0,
			"distributed systems": 2.5,
			"performance":         2.0,
			"kubernetes":          1.5,
		},
		PortfolioFocus: "Show projects that demonstrate scale thinking. " +
			"Include architecture diagrams, load considerations, " +
			"and system design documentation.",
	},
	"research": {
		CompanyType: "research",
		EmphasisAreas: []string{
			"Novel approach", "Rigorous evaluation", "Paper-grade documentation",
			"Reproducibility", "Experiment tracking",
		},
		WeightAdjustments: map[string]float64{
			"machine learning":     3.0,
			"evaluation metrics":   2.5,
			"reproducibility":      2.0,
			"research methodology": 2.0,
			"python":               1.0,
		},
		PortfolioFocus: "Show projects with clear problem formulation, novel approaches, " +
			"ablation studies, and paper-quality writeups.",
	},
	"enterprise": {
		CompanyType: "enterprise",
		EmphasisAreas: []string{
			"Security", "Reliability", "Compliance",
			"Error handling", "Logging & monitoring", "Documentation",
		},
		WeightAdjustments: map[string]float64{
			"security":       4.0,
			"reliability":    3.0,
			"error handling": 2.5,
			"logging":        2.0,
			"monitoring":     2.0,
			"documentation":  2.0,
			"compliance":     1.5,
		},
		PortfolioFocus: "Show projects with robust error handling, security headers, " +
			"structured logging, auth, and deployment pipelines.",
	},
}

// CompanyTypes returns the supported archetype names in sorted order.
func CompanyTypes() (types []string) {
	types = make([]string, 0, len(companyModifiers))
	for name := range companyModifiers {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// LookupCompanyModifier resolves a company archetype, falling back to
// DefaultCompanyType for unknown values.
func LookupCompanyModifier(companyType string) (modifier CompanyModifier) {
	modifier, known := companyModifiers[strings.ToLower(strings.TrimSpace(companyType))]
	if !known {
		modifier = companyModifiers[DefaultCompanyType]
	}
	return modifier
}

// ApplyCompanyModifiers adjusts skill weights in a sanitized skill profile
// according to the archetype's rules, then re-sorts skills by weight. Each
// matching adjustment is applied additively with the running weight clamped to
// [0, 10]; adjustment keys are visited in sorted order so the result is
// deterministic. The profile is modified in place and also returned.
func ApplyCompanyModifiers(profile map[string]any, companyType string) (out map[string]any, modifier CompanyModifier) {
	modifier = LookupCompanyModifier(companyType)
	out = profile
	if out == nil {
		return out, modifier
	}

	skills, isList := out["skills"].([]any)
	if !isList {
		return out, modifier
	}

	keys := make([]string, 0, len(modifier.WeightAdjustments))
	for key := range modifier.WeightAdjustments {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, item := range skills {
		skill, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		name, _ := skill["name"].(string)
		nameLower := strings.ToLower(name)
		weight, isNum := skill["weight"].(float64)
		if !isNum {
			weight = 5.0
		}
		for _, key := range keys {
			if !strings.Contains(nameLower, key) {
				continue
			}
			weight += modifier.WeightAdjustments[key]
			if weight < 0 {
				weight = 0
			}
			if weight > 10 {
				weight = 10
			}
		}
		skill["weight"] = weight
	}

	sort.SliceStable(skills, func(i, j int) bool {
		wi := skillWeight(skills[i])
		wj := skillWeight(skills[j])
		return wi > wj
	})
	out["skills"] = skills

	return out, modifier
}

// skillWeight reads a skill's weight, defaulting missing or malformed values
// to zero for sorting purposes.
func skillWeight(item any) (weight float64) {
	skill, isMap := item.(map[string]any)
	if !isMap {
		return weight
	}
	weight, _ = skill["weight"].(float64)
	return weight
}

// Map renders the modifier as a generic payload for prompts and API responses.
func (m CompanyModifier) Map() (out map[string]any) {
	adjustments := make(map[string]any, len(m.WeightAdjustments))
	for key, value := range m.WeightAdjustments {
		adjustments[key] = value
	}
	emphasis := make([]any, 0, len(m.EmphasisAreas))
	for _, area := range m.EmphasisAreas {
		emphasis = append(emphasis, area)
	}
	out = map[string]any{
		"company_type":       m.CompanyType,
		"emphasis_areas":     emphasis,
		"weight_adjustments": adjustments,
		"portfolio_focus":    m.PortfolioFocus,
	}
	return out
}
