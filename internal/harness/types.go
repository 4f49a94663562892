package harness

import (
	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/pipeline"
	"github.com/roach88/dimu/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions match.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats sums the per-worker counters.
	Stats pipeline.Stats `json:"stats"`

	// Run is the stored record of the aggregate.
	Run store.Run `json:"run"`

	// Collection is the aggregate as reloaded from the store.
	Collection *collection.Collection `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
