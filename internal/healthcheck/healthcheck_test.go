package healthcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/pkg/analysis"
	"github.com/l3aro/go-flowlint/pkg/cache"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(nil, "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckFreshCache(t *testing.T) {
	cfg := testConfig(t)

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	if result.Config.Status != StatusReady {
		t.Errorf("Config.Status = %q, want %q", result.Config.Status, StatusReady)
	}
	if result.CacheDir.Status != StatusReady {
		t.Errorf("CacheDir.Status = %q (%s), want %q", result.CacheDir.Status, result.CacheDir.Error, StatusReady)
	}
	if result.ReportCache.Status != StatusMissing {
		t.Errorf("ReportCache.Status = %q, want %q", result.ReportCache.Status, StatusMissing)
	}
	if result.Failed() {
		t.Error("a fresh cache should not fail the check")
	}
	if info, err := os.Stat(cfg.CacheDir); err != nil || !info.IsDir() {
		t.Errorf("cache directory was not created: %v", err)
	}
	if result.EffectiveScope != "" {
		t.Errorf("EffectiveScope = %q, want empty for defaults", result.EffectiveScope)
	}
}

func TestCheckPersistedReports(t *testing.T) {
	cfg := testConfig(t)
	reports := cache.New[analysis.Report](cache.Options{})
	reports.Set("a", analysis.Report{Digest: "a"})
	reports.Set("b", analysis.Report{Digest: "b"})
	if err := reports.PersistToFile(cfg.CacheFile()); err != nil {
		t.Fatal(err)
	}

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.ReportCache.Status != StatusReady {
		t.Fatalf("ReportCache.Status = %q (%s), want %q", result.ReportCache.Status, result.ReportCache.Error, StatusReady)
	}
	if !strings.Contains(result.ReportCache.Detail, "(2 reports)") {
		t.Errorf("ReportCache.Detail = %q, want the report count", result.ReportCache.Detail)
	}
}

func TestCheckCorruptReports(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.CacheFile(), []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.ReportCache.Status != StatusError {
		t.Errorf("ReportCache.Status = %q, want %q", result.ReportCache.Status, StatusError)
	}
	if !result.Failed() {
		t.Error("a corrupt cache should fail the check")
	}
}

func TestCheckCacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.UseCache = false

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.CacheDir.Status != StatusDisabled || result.ReportCache.Status != StatusDisabled {
		t.Errorf("got cache_dir=%q report_cache=%q, want both disabled",
			result.CacheDir.Status, result.ReportCache.Status)
	}
	if _, err := os.Stat(cfg.CacheDir); !os.IsNotExist(err) {
		t.Error("a disabled cache must not create its directory")
	}
}

func TestCheckInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinLevel = "loud"

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Config.Status != StatusError || !strings.Contains(result.Config.Error, "min_level") {
		t.Errorf("Config = %+v, want a min_level error", result.Config)
	}
}

func TestScopeFromPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{filepath.Join(home, ".flowlint", "config.yaml"), "global"},
		{filepath.Join(".flowlint", "config.yaml"), "project"},
	}
	for _, tt := range tests {
		if got := scopeFromPath(tt.path); got != tt.want {
			t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
