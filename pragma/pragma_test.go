package pragma

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func scanSrc(t *testing.T, src string) Map {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "src.go", strings.NewReader(src), parser.ParseComments)
	if err != nil {
		t.Fatalf("cannot parse source: %v", err)
	}
	m, err := Scan(fset, f)
	if err != nil {
		t.Fatalf("cannot scan pragmas: %v", err)
	}
	return m
}

func TestScan(t *testing.T) {
	src := `package main

func main() {
	//hls:unroll
	for i := 0; i < 3; i++ {
	}
	//hls:pipeline ii=2
	for {
	}
}
`
	m := scanSrc(t, src)
	if p := m.ForLine(5); p.Kind != Unroll {
		t.Errorf("line 5 pragma = %s, want unroll", p.Kind)
	}
	if p := m.ForLine(8); p.Kind != InitInterval || p.Arg != 2 {
		t.Errorf("line 8 pragma = %s ii=%d, want pipeline ii=2", p.Kind, p.Arg)
	}
	if p := m.ForLine(3); p.Kind != None {
		t.Errorf("line 3 pragma = %s, want none", p.Kind)
	}
}

func TestSameLine(t *testing.T) {
	src := `package main

func main() {
	for { //hls:pipeline ii=1
	}
}
`
	m := scanSrc(t, src)
	if p := m.ForLine(4); p.Kind != InitInterval || p.Arg != 1 {
		t.Errorf("line 4 pragma = %s ii=%d, want pipeline ii=1", p.Kind, p.Arg)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"Unknown", "//hls:frobnicate"},
		{"UnrollArg", "//hls:unroll 4"},
		{"PipelineNoArg", "//hls:pipeline"},
		{"PipelineBadArg", "//hls:pipeline ii=x"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src := "package main\n\nfunc main() {\n\t" + test.text + "\n\tfor {\n\t}\n}\n"
			fset := token.NewFileSet()
			f, err := parser.ParseFile(fset, "src.go", strings.NewReader(src), parser.ParseComments)
			if err != nil {
				t.Fatalf("cannot parse source: %v", err)
			}
			if _, err := Scan(fset, f); err == nil {
				t.Errorf("no error for %q", test.text)
			}
		})
	}
}
