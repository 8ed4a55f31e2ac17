package build

import (
	"strings"
	"testing"
)

func TestFromReader(t *testing.T) {
	src := `package main

func helper() {
}

func main() {
	//hls:unroll
	for i := 0; i < 2; i++ {
	}
}
`
	info, err := FromReader(strings.NewReader(src)).Default().Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(info.Files) != 1 {
		t.Fatalf("have %d files, want 1", len(info.Files))
	}
	if _, fn := info.FindFunc("main"); fn == nil {
		t.Error("main not found")
	}
	if _, fn := info.FindFunc("helper"); fn == nil {
		t.Error("helper not found")
	}
	if _, fn := info.FindFunc("missing"); fn != nil {
		t.Error("lookup of unknown function returned a declaration")
	}
	// Comments must survive parsing for the pragma pass.
	if len(info.Files[0].Comments) == 0 {
		t.Error("comments were dropped during parsing")
	}
}

func TestParseError(t *testing.T) {
	if _, err := FromReader(strings.NewReader("package main\nfunc {")).Default().Build(); err == nil {
		t.Error("malformed source accepted")
	}
}
