package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// IgnorePattern is one line of an ignore file, with gitignore semantics:
// a leading `!` re-includes, a trailing `/` matches directories only, and a
// pattern containing a `/` is anchored at the directory of the ignore file.
// Otherwise the pattern is matched against the base name at any depth.
type IgnorePattern struct {
	raw      string
	base     string // directory of the ignore file, relative to the scan root
	negate   bool
	dirOnly  bool
	anchored bool
	g        glob.Glob
}

// ParseIgnorePattern compiles a pattern found in the ignore file of base.
func ParseIgnorePattern(line, base string) (IgnorePattern, error) {
	p := IgnorePattern{raw: line, base: base}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" {
		return p, fmt.Errorf("empty ignore pattern %q", p.raw)
	}
	g, err := glob.Compile(line, '/')
	if err != nil {
		return p, fmt.Errorf("invalid ignore pattern %q: %w", p.raw, err)
	}
	p.g = g
	return p, nil
}

// IsNegation returns true if this pattern re-includes what it matches.
func (p IgnorePattern) IsNegation() bool {
	return p.negate
}

// Match reports whether the slash-separated relPath matches the pattern.
func (p IgnorePattern) Match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.base != "" {
		if !strings.HasPrefix(relPath, p.base+"/") {
			return false
		}
		relPath = strings.TrimPrefix(relPath, p.base+"/")
	}
	if p.anchored {
		return p.g.Match(relPath)
	}
	return p.g.Match(path.Base(relPath))
}

// loadIgnoreFile reads the patterns of file, skipping blank lines and comments.
// A missing file yields no patterns.
func loadIgnoreFile(file, base string) ([]IgnorePattern, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParseIgnorePattern(line, base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, sc.Err()
}

// ignored applies patterns in order; the last match wins.
func ignored(relPath string, isDir bool, patterns []IgnorePattern) bool {
	out := false
	for _, p := range patterns {
		if p.Match(relPath, isDir) {
			out = !p.IsNegation()
		}
	}
	return out
}
