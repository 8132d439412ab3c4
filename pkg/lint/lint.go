// Package lint defines the Lint record shared by every analysis and the
// visitor framework that runs AST linters over a program.
package lint

import (
	"fmt"
	"sort"

	"github.com/l3aro/go-flowlint/pkg/ast"
)

// Level is the severity of a lint.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Rank orders levels from least (note) to most severe (error).
func (l Level) Rank() int {
	switch l {
	case LevelError:
		return 2
	case LevelWarning:
		return 1
	}
	return 0
}

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelError, LevelWarning, LevelNote:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown lint level %q", s)
}

// Code identifies the rule that produced a lint.
type Code string

const (
	CodeAnonymousComponent Code = "AnonymousCompLint"
	CodeConstantSignal     Code = "ConstantSignalLint"
	CodeLoopNoProgress     Code = "LoopNoProgress"
	CodeLoopMayOverflow    Code = "LoopMayOverflow"
	CodeUnassignedSignal   Code = "UnassignedSignal"
	CodeMultipleAssignment Code = "MultipleAssignment"
)

// Location is a span in one source file.
type Location struct {
	FileID int `json:"file_id" msgpack:"file_id"`
	Start  int `json:"start" msgpack:"start"`
	End    int `json:"end" msgpack:"end"`
}

// LocationOf returns the location of a syntax element.
func LocationOf(m ast.Meta) Location {
	return Location{FileID: m.FileID, Start: m.Start, End: m.End}
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d-%d", l.FileID, l.Start, l.End)
}

// Lint is a finding reported to the user. Message is the headline and
// Detail the explanation attached to the primary location.
type Lint struct {
	Code     Code     `json:"code" msgpack:"code"`
	Message  string   `json:"message" msgpack:"message"`
	Location Location `json:"location" msgpack:"location"`
	Detail   string   `json:"detail,omitempty" msgpack:"detail,omitempty"`
	Level    Level    `json:"level" msgpack:"level"`
	Template string   `json:"template,omitempty" msgpack:"template,omitempty"`
}

func (l Lint) String() string {
	s := fmt.Sprintf("%s[%s] %s: %s", l.Level, l.Code, l.Location, l.Message)
	if l.Detail != "" {
		s += "\n  = " + l.Detail
	}
	return s
}

// Sort orders lints by location, then by code. The sort is stable so lints
// at the same place keep their emission order.
func Sort(lints []Lint) {
	sort.SliceStable(lints, func(i, j int) bool {
		a, b := lints[i].Location, lints[j].Location
		if a.FileID != b.FileID {
			return a.FileID < b.FileID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return lints[i].Code < lints[j].Code
	})
}

// Filter returns the lints at least as severe as min.
func Filter(lints []Lint, min Level) []Lint {
	var out []Lint
	for _, l := range lints {
		if l.Level.Rank() >= min.Rank() {
			out = append(out, l)
		}
	}
	return out
}

// Counts tallies lints per level.
func Counts(lints []Lint) map[Level]int {
	counts := make(map[Level]int)
	for _, l := range lints {
		counts[l.Level]++
	}
	return counts
}
