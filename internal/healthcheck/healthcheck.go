// Package healthcheck inspects the configuration in use and the on-disk
// report cache, for the doctor and init commands.
package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/pkg/analysis"
	"github.com/l3aro/go-flowlint/pkg/cache"
)

// Status values of a single check.
const (
	StatusReady    = "ready"
	StatusMissing  = "missing"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// CheckStatus is the outcome of one check.
type CheckStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string      `json:"effective_path,omitempty"`
	EffectiveScope string      `json:"effective_scope,omitempty"` // "global", "project" or "" for defaults
	Config         CheckStatus `json:"config"`
	CacheDir       CheckStatus `json:"cache_dir"`
	ReportCache    CheckStatus `json:"report_cache"`
}

// Failed reports whether any check ended in an error.
func (r *HealthCheckResult) Failed() bool {
	for _, c := range r.Checks() {
		if c.Status == StatusError {
			return true
		}
	}
	return false
}

// Checks returns the checks in display order.
func (r *HealthCheckResult) Checks() []CheckStatus {
	return []CheckStatus{r.Config, r.CacheDir, r.ReportCache}
}

// Check performs a health check against cfg. effectivePath is the config
// file cfg was loaded from, empty when only defaults apply.
func Check(cfg *config.Config, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
		Config:         checkConfig(cfg),
		CacheDir:       checkCacheDir(cfg),
	}
	result.ReportCache = checkReportCache(cfg, result.CacheDir)
	return result, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}
	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".flowlint")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}
	return "project"
}

func checkConfig(cfg *config.Config) CheckStatus {
	s := CheckStatus{Name: "config", Status: StatusReady, Detail: "fingerprint " + cfg.Fingerprint()}
	if err := cfg.Validate(); err != nil {
		s.Status = StatusError
		s.Error = err.Error()
	}
	return s
}

// checkCacheDir verifies that the cache directory can be created and written.
func checkCacheDir(cfg *config.Config) CheckStatus {
	s := CheckStatus{Name: "cache_dir", Detail: cfg.CacheDir}
	if !cfg.UseCache {
		s.Status = StatusDisabled
		return s
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		s.Status = StatusError
		s.Error = err.Error()
		return s
	}
	f, err := os.CreateTemp(cfg.CacheDir, ".doctor-*")
	if err != nil {
		s.Status = StatusError
		s.Error = fmt.Sprintf("not writable: %v", err)
		return s
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	s.Status = StatusReady
	return s
}

// checkReportCache loads the persisted reports to make sure they decode.
func checkReportCache(cfg *config.Config, dir CheckStatus) CheckStatus {
	path := cfg.CacheFile()
	s := CheckStatus{Name: "report_cache", Detail: path}
	if dir.Status != StatusReady {
		s.Status = dir.Status
		return s
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.Status = StatusMissing
		return s
	}
	reports := cache.New[analysis.Report](cache.Options{MaxSize: cfg.CacheSize})
	if err := reports.LoadFromFile(path); err != nil {
		s.Status = StatusError
		s.Error = err.Error()
		return s
	}
	s.Status = StatusReady
	s.Detail = fmt.Sprintf("%s (%d reports)", path, reports.Len())
	return s
}
