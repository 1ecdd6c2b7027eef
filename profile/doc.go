// Package profile provides optional runtime profiling for the akore compiler.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] with conditional
// compilation. Profiling must be enabled at build time using the "pprof"
// build tag:
//
//	go build -tags pprof .
//
// When built without the tag, [Settings.Start] returns a no-op controller and
// [Modes] is empty, so the profiling flags are inert.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	defer profile.Settings{Mode: "cpu", Dir: "/tmp/profiles"}.Start().Stop()
//
// The akore command exposes the same settings through flags:
//
//	akore --pprof-mode cpu build scripts/*.ak
//	akore --pprof-mode heap --pprof-dir ./profiles build big.ak
//
// Profiles are written beneath the cache directory by default:
//
//	$XDG_CACHE_HOME/akore/pprof   (Linux/Unix)
//	~/Library/Caches/akore/pprof  (macOS)
//	%LocalAppData%\akore\pprof    (Windows)
//
// Analyze them with the standard tooling:
//
//	go tool pprof -http=: ~/.cache/akore/pprof/cpu.pprof
//
// Building with the tag also imports [net/http/pprof], which registers the
// /debug/pprof/ handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
