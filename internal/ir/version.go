package ir

// Version constants for the result schema and the compiler.
const (
	// IRVersion is the result schema version.
	IRVersion = "1"

	// EngineVersion is the cliffordt compiler version.
	EngineVersion = "0.1.0"
)
