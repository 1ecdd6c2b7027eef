package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/profile"
)

const (
	configIndent = 2
	configMode   = 0o600
)

// Init writes the current flag values to the configuration file.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(document(ktx), yaml.Indent(configIndent))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, configMode); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// document returns the configuration holding the parsed values of the global
// flags and, nested under each command name, the defaults of that command's
// flags.
func document(ktx *kong.Context) yaml.MapSlice {
	doc := items(ktx.Model.Flags, ktx.FlagValue)

	for _, node := range ktx.Model.Children {
		if node.Type != kong.CommandNode || node.Hidden {
			continue
		}

		flags := items(node.Flags, defaultValue)
		if len(flags) > 0 {
			doc = append(doc, yaml.MapItem{Key: node.Name, Value: flags})
		}
	}

	return doc
}

// defaultValue returns the default of flag, typed for booleans.
func defaultValue(flag *kong.Flag) any {
	if flag.Default == "" {
		return nil
	}

	if flag.IsBool() {
		if b, err := strconv.ParseBool(flag.Default); err == nil {
			return b
		}
	}

	return flag.Default
}

// items returns the configuration entries of flags. Hidden flags, help,
// profiling flags, and flags without a value are left out.
func items(flags []*kong.Flag, value func(*kong.Flag) any) yaml.MapSlice {
	ignore := []string{"help", profile.Tag, "force"}

	var out yaml.MapSlice

	for _, flag := range flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := configValue(value(flag)); v != nil {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return out
}

// configValue converts a flag value to its YAML form, or nil when the value
// is empty.
func configValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil

	case bool, int, int64, uint, uint64, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case time.Duration:
		return v.String()

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	default:
		s := fmt.Sprint(v)
		if s == "" {
			return nil
		}

		return s
	}
}
