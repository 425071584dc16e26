// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears CLARITY_* variables. It returns (home, project).
func isolate(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{EnvBackend, EnvDataDir, EnvNamespace, EnvValidate, EnvLogLevel, EnvLogFormat, EnvLogTimestamps, EnvLogCaller} {
		t.Setenv(key, "")
	}
	t.Chdir(project)
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Backend != DefaultBackend {
		t.Errorf("Backend: got %q, want %q", cfg.Backend, DefaultBackend)
	}
	if cfg.Namespace != "clarity-todo-list" {
		t.Errorf("Namespace: got %q", cfg.Namespace)
	}
	if !cfg.Validate {
		t.Error("Validate should default to true")
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadDefaults(t *testing.T) {
	home, _ := isolate(t)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config
	if cfg.DataDir != filepath.Join(home, ".clarity") {
		t.Errorf("DataDir: got %q, want ~/.clarity expanded", cfg.DataDir)
	}
	for field, source := range cws.Sources {
		if source != SourceDefault {
			t.Errorf("%s: got source %q, want default", field, source)
		}
	}
	if cws.ConfigFile() != "" {
		t.Errorf("ConfigFile: got %q, want none", cws.ConfigFile())
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".clarity", "clarity.toml"), `
backend = "sqlite"
namespace = "user-list"
log_level = "info"
`)
	writeFile(t, filepath.Join(project, "clarity.toml"), `
namespace = "project-list"
log_format = "json"
`)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvValidate, "false")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"--log-format", "logfmt", "ls", "-a"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	checks := []struct {
		field  string
		got    string
		want   string
		source ConfigSource
	}{
		{"backend", cfg.Backend, "sqlite", SourceUserFile},
		{"namespace", cfg.Namespace, "project-list", SourceProjFile},
		{"log_level", cfg.LogLevel, "debug", SourceEnv},
		{"log_format", cfg.LogFormat, "logfmt", SourceFlag},
		{"data_dir", cfg.DataDir, filepath.Join(home, ".clarity"), SourceDefault},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.field, c.got, c.want)
		}
		if cws.Sources[c.field] != c.source {
			t.Errorf("%s source: got %q, want %q", c.field, cws.Sources[c.field], c.source)
		}
	}
	if cfg.Validate {
		t.Error("Validate: env false should win over default")
	}

	if len(cws.Files) != 2 || cws.ConfigFile() != "clarity.toml" {
		t.Errorf("Files: got %v", cws.Files)
	}
	if got := strings.Join(fs.Args(), " "); got != "ls -a" {
		t.Errorf("remaining args: got %q", got)
	}
}

func TestDotfileProjectConfig(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ".clarity.toml"), `backend = "memory"`)

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Errorf("Backend: got %q, want memory", cfg.Backend)
	}
}

func TestOSConfigDirFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux only")
	}
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "clarity", "clarity.toml"), `namespace = "xdg"`)

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Namespace != "xdg" {
		t.Errorf("Namespace: got %q, want xdg", cfg.Namespace)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad toml", `backend = `, "loading project config file"},
		{"unknown key", `todo_file = "x.json"`, "unknown config keys: todo_file"},
		{"bad backend", `backend = "redis"`, "unknown backend"},
		{"bad level", `log_level = "loud"`, "invalid log level"},
		{"bad format", `log_format = "xml"`, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, project := isolate(t)
			writeFile(t, filepath.Join(project, "clarity.toml"), tt.content)

			_, err := Load(nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackend, "db")
	t.Setenv(EnvDataDir, "/tmp/clarity-data")
	t.Setenv(EnvNamespace, "env-list")
	t.Setenv(EnvLogTimestamps, "1")
	t.Setenv(EnvLogCaller, "true")

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend: got %q, want sqlite (alias normalized)", cfg.Backend)
	}
	if cfg.DataDir != filepath.Clean("/tmp/clarity-data") {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if cfg.Namespace != "env-list" {
		t.Errorf("Namespace: got %q", cfg.Namespace)
	}
	if !cfg.LogTimestamps || !cfg.LogCaller {
		t.Errorf("log bools: timestamps=%v caller=%v", cfg.LogTimestamps, cfg.LogCaller)
	}
}

func TestLoadFromEnvInvalidBool(t *testing.T) {
	isolate(t)
	t.Setenv(EnvValidate, "maybe")

	_, err := Load(nil, nil)
	if err == nil || !strings.Contains(err.Error(), EnvValidate) {
		t.Errorf("expected %s error, got %v", EnvValidate, err)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{
		"--backend", "memory",
		"--data-dir", "data",
		"--validate=false",
		"add", "milk",
	}
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.Backend != "memory" || cfg.DataDir != "data" || cfg.Validate {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Namespace != DefaultNamespace {
		t.Errorf("unset flag changed Namespace: %q", cfg.Namespace)
	}
	if sources["backend"] != SourceFlag || sources["validate"] != SourceFlag {
		t.Errorf("sources: %v", sources)
	}
	if _, ok := sources["namespace"]; ok {
		t.Error("unset flag should not record a source")
	}
	if len(fs.Args()) != 2 || fs.Arg(0) != "add" {
		t.Errorf("Args: got %v", fs.Args())
	}
}

func TestRelativeDataDirAnchoredAtProject(t *testing.T) {
	_, project := isolate(t)

	cfg, err := Load(nil, []string{"--data-dir", "state"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// t.TempDir may sit behind a symlink, compare resolved paths.
	want, _ := filepath.EvalSymlinks(project)
	got, _ := filepath.EvalSymlinks(filepath.Dir(cfg.DataDir))
	if got != want || filepath.Base(cfg.DataDir) != "state" {
		t.Errorf("DataDir: got %q, want under %q", cfg.DataDir, project)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"", ""},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("CLARITY_TEST_HOME", home)
		tests = append(tests,
			struct{ input, want string }{`~\test`, filepath.Join(home, "test")},
			struct{ input, want string }{`%CLARITY_TEST_HOME%\data`, filepath.Join(home, "data")},
		)
	} else {
		tests = append(tests, struct{ input, want string }{`~\test`, `~\test`})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, "clarity.toml"), ExampleConfig())

	cws, err := LoadWithSources(nil, nil)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cws.Sources["backend"] != SourceProjFile {
		t.Errorf("backend source: got %q", cws.Sources["backend"])
	}
}

func TestFields(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fields := cfg.Fields()
	if len(fields) != len(configFields()) {
		t.Fatalf("Fields: got %d entries", len(fields))
	}
	if fields[0] != [2]string{"backend", "file"} {
		t.Errorf("first field: got %v", fields[0])
	}
	if fields[3] != [2]string{"validate", "true"} {
		t.Errorf("validate field: got %v", fields[3])
	}

	sc := cfg.StorageConfig()
	if sc.Backend != cfg.Backend || sc.DataDir != cfg.DataDir {
		t.Errorf("StorageConfig: got %+v", sc)
	}
}
