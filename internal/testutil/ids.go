package testutil

// FixedRunID returns the same run id every time.
//
// Scenarios that each own a fresh store use it so saved runs, and
// anything derived from them, are byte-identical between executions.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run id generator. An empty id becomes
// "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed id. Implements store.IDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
