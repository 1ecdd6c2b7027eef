package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/ardnew/akore/pkg"
)

// Version prints version information.
type Version struct {
	Verbose bool `help:"Include the Go version and platform" short:"v"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	return v.run(ctx, os.Stdout)
}

func (v *Version) run(ctx context.Context, stdout io.Writer) error {
	version := kongVar(ctx, VersionIdentifier, pkg.Version)

	var err error
	if v.Verbose {
		_, err = fmt.Fprintf(stdout, "%s %s (%s %s/%s)\n",
			pkg.Name, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	} else {
		_, err = fmt.Fprintln(stdout, version)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
