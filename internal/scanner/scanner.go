// Package scanner finds program documents under a directory tree.
// It respects .flowlintignore files with gitignore-style patterns and picks
// the document format from the file extension.
package scanner

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l3aro/go-flowlint/pkg/program"
)

// FileInfo represents information about a discovered document.
type FileInfo struct {
	Path     string         // Relative path from root, slash separated
	FullPath string         // Absolute path
	Format   program.Format // Document encoding
	Size     int64          // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Directory names never entered
	IgnoreFileName  string   // Name of the ignore file (default: .flowlintignore)
	MaxSize         int64    // Skip documents larger than this; 0 means no limit
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".flowlintignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"dist",
			"build",
			"target",
			"vendor",
			".idea",
			".vscode",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".flowlintignore"
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns the program documents below it, sorted by path.
// Ignore files apply to the directory they are found in and everything below.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	patterns, err := loadIgnoreFile(filepath.Join(absRoot, s.opts.IgnoreFileName), "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == absRoot {
				return err
			}
			// Unreadable entries are skipped.
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || ignored(rel, true, patterns) {
				return filepath.SkipDir
			}
			nested, err := loadIgnoreFile(filepath.Join(p, s.opts.IgnoreFileName), rel)
			if err != nil {
				return fmt.Errorf("loading ignore patterns: %w", err)
			}
			patterns = append(patterns, nested...)
			return nil
		}

		if !d.Type().IsRegular() || ignored(rel, false, patterns) {
			return nil
		}
		format, err := program.FormatFromPath(rel)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if s.opts.MaxSize > 0 && info.Size() > s.opts.MaxSize {
			return nil
		}
		files = append(files, FileInfo{Path: rel, FullPath: p, Format: format, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}

// IsDocument reports whether name has a program document extension.
func IsDocument(name string) bool {
	_, err := program.FormatFromPath(path.Base(name))
	return err == nil
}
