package parser

const (
	// GeneratedFileName is the file locgen writes into each package
	GeneratedFileName = "locations_gen.go"

	// LocationVarSuffix is appended to a type name to name its descriptor
	LocationVarSuffix = "Location"
)
