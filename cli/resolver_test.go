package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_Flatten(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want config
	}{
		{
			name: "empty",
			doc:  "  \n",
			want: config{},
		},
		{
			name: "flat",
			doc:  "log-level: debug\nminify: true\n",
			want: config{"log-level": "debug", "minify": true},
		},
		{
			name: "nested",
			doc:  "log:\n  level: warn\n  caller: false\n",
			want: config{"log-level": "warn", "log-caller": false},
		},
		{
			name: "underscores",
			doc:  "log_time_layout: Kitchen\n",
			want: config{"log-time-layout": "Kitchen"},
		},
		{
			name: "numbers",
			doc:  "timeout: 3\nratio: 0.5\n",
			want: config{"timeout": "3", "ratio": "0.5"},
		},
		{
			name: "sequence",
			doc:  "disable: [$print, $var]\n",
			want: config{"disable": "$print,$var"},
		},
		{
			name: "null",
			doc:  "output: ~\n",
			want: config{},
		},
		{
			name: "invalid",
			doc:  "log: [unterminated\n",
			want: config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loadConfig(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}

			got, ok := res.(config)
			if !ok {
				t.Fatalf("loadConfig() returned %T, want config", res)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_Kong(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configName)

	doc := strings.Join([]string{
		"name: from-config",
		"count: 7",
		"build:",
		"  verbose: true",
		"",
	}, "\n")

	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Build struct {
			Name    string `default:"default"`
			Count   int    `default:"1"`
			Verbose bool
		} `cmd:""`
	}

	parser, err := kong.New(&cli, kong.Configuration(loadConfig, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"build", "--count=9"}); err != nil {
		t.Fatal(err)
	}

	if cli.Build.Name != "from-config" {
		t.Errorf("Name = %q, want %q", cli.Build.Name, "from-config")
	}

	if cli.Build.Count != 9 {
		t.Errorf("Count = %d, want command line value 9", cli.Build.Count)
	}

	if !cli.Build.Verbose {
		t.Error("Verbose = false, want command-scoped config value true")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	var cli struct {
		Name string `default:"default"`
	}

	parser, err := kong.New(&cli,
		kong.Configuration(loadConfig, filepath.Join(t.TempDir(), configName)),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatal(err)
	}

	if cli.Name != "default" {
		t.Errorf("Name = %q, want %q", cli.Name, "default")
	}
}
