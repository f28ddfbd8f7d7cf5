// Package settings carries build metadata and the options of one kvi run.
package settings

// CliBinaryName is the name of the kvi executable.
const CliBinaryName = "kvi"

// VersionInformation is set at link time with -ldflags "-X".
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-dev",
	BuildTime:    "unknown",
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// Source says where the inspected document came from.
type Source struct {
	// Path is empty when reading standard input.
	Path  string
	Stdin bool
	// Watch reloads Path when it changes. It requires a file source.
	Watch bool
}

// Run holds the settings of a single invocation.
type Run struct {
	MinLogLevel int8
	Source      Source
	Interactive bool
	NoColor     bool

	// Query is the initial search query.
	Query string
	// Expression pre-selects the inspected root with CEL.
	Expression string
	// Output is the non-interactive output mode.
	Output string

	RememberExpansion bool
	HighlightMode     string
	TimestampLayout   string
}

// NewCliParams returns the defaults of a command-line run.
func NewCliParams() *Run {
	return &Run{
		Source: Source{Stdin: true},
		Output: "text",
	}
}
