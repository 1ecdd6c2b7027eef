package profile

import "slices"

// Settings select what to profile and where to write the results.
type Settings struct {
	// Mode is one of [Modes]. Profiling is disabled when Mode is empty.
	Mode string
	// Dir is the output directory. The default is the working directory.
	Dir string
	// Quiet suppresses the profiler's own log messages.
	Quiet bool
}

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Start starts the profiler selected by s.
//
// Start returns a no-op Stopper when Mode is empty or unsupported, including
// every mode when built without the pprof build tag.
func (s Settings) Start() Stopper {
	if s.Mode == "" || !Supported(s.Mode) {
		return ignore{}
	}

	return start(s)
}

// Supported reports whether mode is one of [Modes].
func Supported(mode string) bool {
	return slices.Contains(Modes(), mode)
}

type ignore struct{}

func (ignore) Stop() {}
