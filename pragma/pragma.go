// Package pragma recognises //hls: comment directives attached to loops.
//
// A directive occupies its own comment line immediately above the loop
// it annotates, or sits on the loop's own line:
//
//	//hls:unroll
//	//hls:pipeline ii=2
//
// Scanning is a separate pass over a file's comments; lowering only ever
// sees the resolved Pragma for a source line.
package pragma

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const prefix = "//hls:"

// Kind enumerates the recognised directives.
type Kind int

const (
	None Kind = iota
	Unroll
	InitInterval
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Unroll:
		return "unroll"
	case InitInterval:
		return "pipeline"
	}
	return "pragma(?)"
}

// A Pragma is one resolved directive.
type Pragma struct {
	Kind Kind
	Arg  int // InitInterval argument.
	Pos  token.Position
}

// A Map holds the pragmas of one file keyed by source line.
type Map map[int]Pragma

// Scan collects the hls pragmas of f.
func Scan(fset *token.FileSet, f *ast.File) (Map, error) {
	m := make(Map)
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, prefix) {
				continue
			}
			pos := fset.Position(c.Pos())
			p, err := parse(strings.TrimPrefix(c.Text, prefix), pos)
			if err != nil {
				return nil, err
			}
			m[pos.Line] = p
		}
	}
	return m, nil
}

// ForLine returns the pragma annotating a construct on the given line:
// the line itself, or the line directly above.
func (m Map) ForLine(line int) Pragma {
	if p, ok := m[line]; ok {
		return p
	}
	if p, ok := m[line-1]; ok {
		return p
	}
	return Pragma{Kind: None}
}

func parse(text string, pos token.Position) (Pragma, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Pragma{}, errors.Errorf("%s: empty hls pragma", pos)
	}
	switch fields[0] {
	case "unroll":
		if len(fields) != 1 {
			return Pragma{}, errors.Errorf("%s: unroll pragma takes no argument", pos)
		}
		return Pragma{Kind: Unroll, Pos: pos}, nil
	case "pipeline":
		if len(fields) != 2 || !strings.HasPrefix(fields[1], "ii=") {
			return Pragma{}, errors.Errorf("%s: pipeline pragma requires ii=N", pos)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(fields[1], "ii="))
		if err != nil {
			return Pragma{}, errors.Wrapf(err, "%s: pipeline pragma argument", pos)
		}
		return Pragma{Kind: InitInterval, Arg: n, Pos: pos}, nil
	}
	return Pragma{}, errors.Errorf("%s: unknown hls pragma %q", pos, fields[0])
}
