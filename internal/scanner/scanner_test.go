package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-flowlint/pkg/program"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, content := range files {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.json":                 "{}",
		"circuits/adder.yaml":       "version: 1",
		"circuits/mul.yml":          "version: 1",
		"circuits/packed.msgpack":   "",
		"circuits/short.mp":         "",
		"circuits/adder.circom":     "template Adder() {}",
		"README.md":                 "# circuits",
		".flowlint/config.yaml":     "min_level: note",
		"node_modules/lib/pkg.json": "{}",
		"build/out.json":            "{}",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"circuits/adder.yaml",
		"circuits/mul.yml",
		"circuits/packed.msgpack",
		"circuits/short.mp",
		"main.json",
	}, paths(files))

	byPath := make(map[string]FileInfo)
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.Equal(t, program.FormatJSON, byPath["main.json"].Format)
	assert.Equal(t, program.FormatYAML, byPath["circuits/mul.yml"].Format)
	assert.Equal(t, program.FormatMsgpack, byPath["circuits/short.mp"].Format)
	assert.Equal(t, int64(2), byPath["main.json"].Size)
	assert.True(t, filepath.IsAbs(byPath["main.json"].FullPath))
}

func TestScan_IgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".flowlintignore":           "# generated\n*.msgpack\nfixtures/\n/top.json\n",
		"top.json":                  "{}",
		"nested/top.json":           "{}",
		"keep.msgpack":              "",
		"fixtures/a.json":           "{}",
		"lib/fixtures/b.json":       "{}",
		"lib/.flowlintignore":       "old/*.yaml\n!old/keep.yaml\n",
		"lib/old/drop.yaml":         "",
		"lib/old/keep.yaml":         "",
		"other/old/unaffected.yaml": "",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lib/old/keep.yaml",
		"nested/top.json",
		"other/old/unaffected.yaml",
	}, paths(files))
}

func TestScan_Options(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".hidden/a.json": "{}",
		"big.json":       "{\"version\": 1}",
		"small.json":     "{}",
	})

	files, err := New(Options{MaxSize: 4}).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden/a.json", "small.json"}, paths(files))
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestScan_InvalidIgnorePattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{".flowlintignore": "/\n"})

	_, err := Scan(root)
	assert.Error(t, err)
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		base    string
		path    string
		isDir   bool
		want    bool
	}{
		{"*.json", "", "a/b/c.json", false, true},
		{"*.json", "", "a/b/c.yaml", false, false},
		{"build/", "", "x/build", true, true},
		{"build/", "", "x/build", false, false},
		{"/top.json", "", "top.json", false, true},
		{"/top.json", "", "sub/top.json", false, false},
		{"docs/*.yaml", "", "docs/a.yaml", false, true},
		{"docs/*.yaml", "", "docs/deep/a.yaml", false, false},
		{"docs/**/*.yaml", "", "docs/deep/a.yaml", false, true},
		{"gen?.json", "", "gen1.json", false, true},
		{"*.json", "lib", "lib/a.json", false, true},
		{"*.json", "lib", "other/a.json", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p, err := ParseIgnorePattern(tt.pattern, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.path, tt.isDir))
		})
	}

	neg, err := ParseIgnorePattern("!keep.json", "")
	require.NoError(t, err)
	assert.True(t, neg.IsNegation())

	_, err = ParseIgnorePattern("!", "")
	assert.Error(t, err)
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("a/b.JSON"))
	assert.True(t, IsDocument("b.yml"))
	assert.False(t, IsDocument("b.circom"))
}
