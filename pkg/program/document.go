package program

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a program document.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// DocumentVersion is the schema version written by Encode.
const DocumentVersion = 1

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unsupported program document: %s (use .json, .yaml or .msgpack)", path)
}

// Document is the serialized form of a Program.
type Document struct {
	Version   int           `json:"version" yaml:"version" msgpack:"version"`
	MainFile  int           `json:"main_file" yaml:"main_file" msgpack:"main_file"`
	Files     []FileDoc     `json:"files" yaml:"files" msgpack:"files"`
	Templates []TemplateDoc `json:"templates" yaml:"templates" msgpack:"templates"`
}

// FileDoc is a source file. Content may be omitted, in which case Path is read
// relative to the document.
type FileDoc struct {
	ID      int    `json:"id" yaml:"id" msgpack:"id"`
	Path    string `json:"path" yaml:"path" msgpack:"path"`
	Content string `json:"content,omitempty" yaml:"content,omitempty" msgpack:"content,omitempty"`
}

type TemplateDoc struct {
	Name    string   `json:"name" yaml:"name" msgpack:"name"`
	Params  []string `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	Inputs  []string `json:"inputs,omitempty" yaml:"inputs,omitempty" msgpack:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty" msgpack:"outputs,omitempty"`
	Body    *StmtDoc `json:"body" yaml:"body" msgpack:"body"`
}

// SpanDoc is the serialized ast.Meta.
type SpanDoc struct {
	ElemID int    `json:"elem_id,omitempty" yaml:"elem_id,omitempty" msgpack:"elem_id,omitempty"`
	Start  int    `json:"start" yaml:"start" msgpack:"start"`
	End    int    `json:"end" yaml:"end" msgpack:"end"`
	FileID int    `json:"file_id,omitempty" yaml:"file_id,omitempty" msgpack:"file_id,omitempty"`
	Of     string `json:"of,omitempty" yaml:"of,omitempty" msgpack:"of,omitempty"` // component inference
}

type TypeDoc struct {
	Kind   string `json:"kind" yaml:"kind" msgpack:"kind"`
	Signal string `json:"signal,omitempty" yaml:"signal,omitempty" msgpack:"signal,omitempty"`
}

// AccessDoc is `.Field` when Field is set, `[Index]` otherwise.
type AccessDoc struct {
	Field string   `json:"field,omitempty" yaml:"field,omitempty" msgpack:"field,omitempty"`
	Index *ExprDoc `json:"index,omitempty" yaml:"index,omitempty" msgpack:"index,omitempty"`
}

// StmtDoc is a tagged statement node; Kind selects which fields are meaningful.
type StmtDoc struct {
	Kind    string `json:"kind" yaml:"kind" msgpack:"kind"`
	SpanDoc `yaml:",inline" msgpack:",inline"`

	Name       string      `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Type       *TypeDoc    `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Dimensions []*ExprDoc  `json:"dimensions,omitempty" yaml:"dimensions,omitempty" msgpack:"dimensions,omitempty"`
	Access     []AccessDoc `json:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Op         string      `json:"op,omitempty" yaml:"op,omitempty" msgpack:"op,omitempty"`
	Lhe        *ExprDoc    `json:"lhe,omitempty" yaml:"lhe,omitempty" msgpack:"lhe,omitempty"`
	Rhe        *ExprDoc    `json:"rhe,omitempty" yaml:"rhe,omitempty" msgpack:"rhe,omitempty"`
	Cond       *ExprDoc    `json:"cond,omitempty" yaml:"cond,omitempty" msgpack:"cond,omitempty"`
	Args       []*ExprDoc  `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
	Stmts      []*StmtDoc  `json:"stmts,omitempty" yaml:"stmts,omitempty" msgpack:"stmts,omitempty"`
	Then       *StmtDoc    `json:"then,omitempty" yaml:"then,omitempty" msgpack:"then,omitempty"`
	Else       *StmtDoc    `json:"else,omitempty" yaml:"else,omitempty" msgpack:"else,omitempty"`
	Body       *StmtDoc    `json:"body,omitempty" yaml:"body,omitempty" msgpack:"body,omitempty"`
}

// ExprDoc is a tagged expression node.
type ExprDoc struct {
	Kind    string `json:"kind" yaml:"kind" msgpack:"kind"`
	SpanDoc `yaml:",inline" msgpack:",inline"`

	Value  string      `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Name   string      `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Access []AccessDoc `json:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Op     string      `json:"op,omitempty" yaml:"op,omitempty" msgpack:"op,omitempty"`
	Lhe    *ExprDoc    `json:"lhe,omitempty" yaml:"lhe,omitempty" msgpack:"lhe,omitempty"`
	Rhe    *ExprDoc    `json:"rhe,omitempty" yaml:"rhe,omitempty" msgpack:"rhe,omitempty"`
	Args   []*ExprDoc  `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
	Cond   *ExprDoc    `json:"cond,omitempty" yaml:"cond,omitempty" msgpack:"cond,omitempty"`
	True   *ExprDoc    `json:"if_true,omitempty" yaml:"if_true,omitempty" msgpack:"if_true,omitempty"`
	False  *ExprDoc    `json:"if_false,omitempty" yaml:"if_false,omitempty" msgpack:"if_false,omitempty"`
}

// Decode reads a program document in the given format.
// Relative file paths without inline content are resolved against baseDir.
func Decode(r io.Reader, format Format, baseDir string) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program document: %w", err)
	}
	return decodeBytes(data, format, baseDir)
}

// LoadFile reads the program document at path.
func LoadFile(path string) (*Program, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	prog, err := decodeBytes(data, format, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return prog, nil
}

func decodeBytes(data []byte, format Format, baseDir string) (*Program, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", format, err)
	}

	h := sha256.New()
	h.Write(data)
	for i, f := range doc.Files {
		if f.Content != "" || f.Path == "" {
			continue
		}
		path := f.Path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading source file %s: %w", f.Path, err)
		}
		h.Write(content)
		doc.Files[i].Content = string(content)
	}

	prog, err := doc.Program()
	if err != nil {
		return nil, err
	}
	prog.Digest = hex.EncodeToString(h.Sum(nil))
	return prog, nil
}

// Encode writes p as a document in the given format. Files are written with
// their content inline.
func Encode(w io.Writer, p *Program, format Format) error {
	doc := NewDocument(p)
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case FormatMsgpack:
		data, err = msgpack.Marshal(doc)
	default:
		return fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s document: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
