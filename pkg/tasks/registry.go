// Package tasks defines the generation task catalog: one immutable descriptor
// per pipeline operation, binding its prompt, model parameters, and output
// sanitization schema.
package tasks

import (
	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// Registry holds every generation task descriptor. Descriptors are built once
// at startup and never mutated afterwards, so a single Registry is safe for
// concurrent use.
type Registry struct {
	JDAnalysis *engine.Task
	Capstone   *engine.Task
	Scorecard  *engine.Task
	Scaffold   *engine.Task
	Portfolio  *engine.Task
	Fitness    *engine.Task
}

// NewRegistry builds the full task catalog.
func NewRegistry() (r *Registry) {
	r = &Registry{
		JDAnalysis: newJDTask(),
		Capstone:   newCapstoneTask(),
		Scorecard:  newScorecardTask(),
		Scaffold:   newScaffoldTask(),
		Portfolio:  newPortfolioTask(),
		Fitness:    newFitnessTask(),
	}
	return r
}

// All returns every task descriptor, for metrics registration and listings.
func (r *Registry) All() (tasks []*engine.Task) {
	tasks = []*engine.Task{
		r.JDAnalysis, r.Capstone, r.Scorecard, r.Scaffold, r.Portfolio, r.Fitness,
	}
	return tasks
}
