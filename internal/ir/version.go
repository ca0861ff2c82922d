package ir

// Version constants for the encoded predicate schema and the tool.
const (
	// IRVersion is the encoded predicate schema version.
	IRVersion = "1"

	// Version is the termql release version.
	Version = "0.1.0"
)
