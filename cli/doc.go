// Package cli contains the command line interface for akore.
//
// # Usage
//
//	akore [flags] <command> [args]
//
// Running akore with only file arguments is the same as "akore build".
//
// # Commands
//
//   - build: compile source files to JavaScript
//   - tokens: print the token tree of a source file as YAML, JSON, or a tree
//   - run: compile a source file and execute it in a sandbox
//   - repl: compile interactively with instruction name completion
//   - init: write the current flag values to the configuration file
//   - version: print version information
//
// # Configuration
//
// Flag defaults are read from config.yaml in the configuration directory
// (for example ~/.config/akore/config.yaml). Keys are flag names and nested
// mappings are joined with hyphens:
//
//	log:
//	  level: debug
//	build:
//	  minify: true
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o akore .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/akore/pprof)
//
// # Examples
//
//	# Compile two scripts into a directory
//	akore build -o dist/ greet.ak count.ak
//
//	# Debug logging with CPU profiling
//	akore --log-level=debug --pprof-mode=cpu build greet.ak
package cli
