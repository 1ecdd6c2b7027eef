package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named id, or fallback when ctx carries
// no kong.Context or the variable is undefined.
func kongVar(ctx context.Context, id, fallback string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return fallback
	}

	if v, ok := ktx.Model.Vars()[id]; ok {
		return v
	}

	return fallback
}

// stdinSource names standard input in a list of source paths.
const stdinSource = "-"

// Source is the content of one input file.
type Source struct {
	// Path is the name the source was given on the command line, or "-"
	// for standard input.
	Path string
	Text string
}

// fileKey identifies a file by device and inode, so that one file reached
// through symlinks or different relative paths is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// readSources reads each distinct file in paths in order.
//
// Every "-" refers to stdin, which is read once and placed after all regular
// files. Paths resolving to an already read file are skipped. A file that
// cannot be read is an error.
func readSources(paths []string, stdin io.Reader) ([]Source, error) {
	var (
		sources  []Source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		src, ok, err := readUnique(path, seen)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		if ok {
			sources = append(sources, src)
		}
	}

	if hasStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", stdinSource))
		}

		sources = append(sources, Source{Path: stdinSource, Text: string(data)})
	}

	return sources, nil
}

// readUnique reads path unless the file it resolves to is already in seen.
func readUnique(path string, seen map[fileKey]struct{}) (Source, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, false, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			return Source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Source{}, false, err
	}

	return Source{Path: path, Text: string(data)}, true, nil
}
