//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the akore module embedded at build time.
// It appears in the header of every generated script and is printed by the
// version subcommand.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text, generated script headers
	// and default config paths.
	Name = "akore"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Instruction language to JavaScript compiler"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// Header returns the comment line prepended to every generated script.
func Header() string {
	return "// Generated by " + Name + " v" + Version + " //\n"
}
