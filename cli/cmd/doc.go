// Package cmd implements the akore subcommands.
package cmd

// Names of the kong variables defined by the root command.
var (
	// CacheIdentifier holds the path to the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier holds the path to the configuration file.
	ConfigIdentifier = "config"

	// InstructionsIdentifier holds the default instruction manifest
	// directory.
	InstructionsIdentifier = "instructions"

	// VersionIdentifier holds the module version.
	VersionIdentifier = "version"
)
