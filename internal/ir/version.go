package ir

// Version constants recorded with every persisted aggregate.
const (
	// SchemaVersion is the snapshot schema version.
	SchemaVersion = "1"

	// ToolVersion is the dimu version.
	ToolVersion = "0.1.0"
)
