package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestTOMLLoader_LoadFrom(t *testing.T) {
	fsys := fstest.MapFS{
		"cfg/app.toml": {Data: []byte(`
[history]
sizeBudget = 4096
indexWidth = "16"

[logging]
level = "debug"
`)},
	}

	l := NewTOMLLoaderWithFS(fsys, "cfg/app.toml")
	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	history, ok := config["history"].(map[string]any)
	if !ok {
		t.Fatalf("history section = %T, want map", config["history"])
	}
	if history["sizeBudget"] != int64(4096) {
		t.Errorf("history.sizeBudget = %v (%T), want 4096", history["sizeBudget"], history["sizeBudget"])
	}
	if history["indexWidth"] != "16" {
		t.Errorf("history.indexWidth = %v, want \"16\"", history["indexWidth"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	l := NewTOMLLoaderWithFS(fstest.MapFS{}, "missing.toml")
	config, err := l.Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	l := NewTOMLLoader("")
	_, err := l.LoadFromReader(strings.NewReader("[history\nsizeBudget = 1"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Path != "<reader>" || pe.Line == 0 {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestYAMLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"app.yaml":  {Data: []byte("history:\n  sizeBudget: 2048\nview:\n  showEvents: true\n")},
		"empty.yml": {Data: []byte("")},
		"bad.yaml":  {Data: []byte("history: [")},
	}

	config, err := NewYAMLLoaderWithFS(fsys, "app.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := config["history"].(map[string]any)["sizeBudget"]; got != 2048 {
		t.Errorf("history.sizeBudget = %v (%T), want 2048", got, got)
	}
	if got := config["view"].(map[string]any)["showEvents"]; got != true {
		t.Errorf("view.showEvents = %v, want true", got)
	}

	config, err = NewYAMLLoaderWithFS(fsys, "empty.yml").Load()
	if err != nil || config == nil || len(config) != 0 {
		t.Errorf("empty file = %v, %v, want empty map", config, err)
	}

	_, err = NewYAMLLoaderWithFS(fsys, "bad.yaml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "bad.yaml" {
		t.Errorf("error = %v, want *ParseError for bad.yaml", err)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"config.toml", "*loader.TOMLLoader", false},
		{"config.YAML", "*loader.YAMLLoader", false},
		{"config.yml", "*loader.YAMLLoader", false},
		{"config.json", "", true},
		{"config", "", true},
	}

	for _, tt := range tests {
		l, err := ForPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ForPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if got := typeName(l); got != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func typeName(l FileLoader) string {
	switch l.(type) {
	case *TOMLLoader:
		return "*loader.TOMLLoader"
	case *YAMLLoader:
		return "*loader.YAMLLoader"
	}
	return "unknown"
}

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoader("EDITHIST_")
	l.lookup = func() []string {
		return []string{
			"EDITHIST_LOG_LEVEL=debug",
			"EDITHIST_HISTORY_SIZE_BUDGET=0",
			"EDITHIST_VIEW_SHOW_EVENTS=yes",
			"EDITHIST_METRICS_ADDR=:9100",
			"OTHER_VAR=ignored",
			"EDITHIST_BROKEN",
		}
	}

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"history.sizeBudget", int64(0)},
		{"view.showEvents", true},
		{"metrics.addr", ":9100"},
	}
	for _, tt := range tests {
		if got := getByPath(config, tt.path); got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variable should be ignored")
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader("EDITHIST_")

	tests := []struct {
		env      string
		expected string
	}{
		{"EDITHIST_HISTORY_SIZE_BUDGET", "history.sizeBudget"},
		{"EDITHIST_METRICS_ADDR", "metrics.addr"},
		{"EDITHIST_SIMPLE", "simple"},
		{"EDITHIST_VIEW_SHOW_EVENTS", "view.showEvents"},
	}

	for _, tt := range tests {
		got := l.envToPath(tt.env)
		if got != tt.expected {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"", ""},
		{"true", true},
		{"OFF", false},
		{"0", int64(0)},
		{"1", int64(1)},
		{"-42", int64(-42)},
		{"1.5", 1.5},
		{"250ms", 250 * time.Millisecond},
		{"info", "info"},
	}

	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"history": map[string]any{"sizeBudget": 1, "indexWidth": "32"},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"history": map[string]any{"sizeBudget": 2},
		"view":    map[string]any{"showEvents": true},
	}

	out := DeepMerge(dst, src)
	history := out["history"].(map[string]any)
	if history["sizeBudget"] != 2 || history["indexWidth"] != "32" {
		t.Errorf("history = %v", history)
	}
	if out["view"] == nil || out["logging"] == nil {
		t.Errorf("merged = %v", out)
	}
}

func getByPath(m map[string]any, path string) any {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		cm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = cm[part]
	}
	return cur
}
