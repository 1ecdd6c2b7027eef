package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

// configName is the base name of the configuration file.
const configName = "config.yaml"

// loadConfig is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys are flag names. Nested mappings are joined with hyphens, so the two
// documents below are equivalent:
//
//	log-level: debug
//	build:
//	  minify: true
//
//	log:
//	  level: debug
//	build-minify: true
//
// A key prefixed with a command name only applies to that command's flags
// and takes precedence over the unprefixed key. Underscores may be used in
// place of hyphens. Sequences are passed to kong as comma-separated lists.
// Command-line flags override config file values.
//
// A document that cannot be decoded is logged and ignored, so a broken file
// never prevents "init --force" from replacing it.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrConfig.Wrap(err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return config{}, nil
	}

	var doc map[string]any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		log.Warn("ignoring configuration",
			slog.String("error", pkg.ErrConfig.Wrap(err).Error()),
		)

		return config{}, nil
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	ktx *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if ktx != nil {
		if node := ktx.Selected(); node != nil {
			if value, ok := c[node.Name+"-"+flag.Name]; ok {
				return value, nil
			}
		}
	}

	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}

// flatten stores each leaf of doc under its hyphen-joined path.
func (c config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(key, v)

		case nil:

		default:
			c[key] = scalar(v)
		}
	}
}

// scalar converts a decoded YAML value to the form kong expects from a
// resolver. Numbers are formatted as strings for kong to parse.
func scalar(value any) any {
	switch v := value.(type) {
	case bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(scalar(item)))
		}

		return strings.Join(items, ",")

	default:
		return fmt.Sprint(v)
	}
}
