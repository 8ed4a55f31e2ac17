// Package build is a helper package for parsing annotated source for
// the lowering packages in the parent directory.
//
// Usage
//
// There are two ways of supplying source code:
//
// Build from a list of source files
//
// This is the normal usage, where a number of files are supplied
// (usually as command line arguments) and parsed together into one
// fileset.
//
// Build from a Reader
//
// This is mostly used for testing or demo, where the input source code
// is read from a given io.Reader.
//
package build

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/ioutil"
	"log"
)

// An Info holds the result of a source build, ready for lowering.
type Info struct {
	FSet  *token.FileSet // FileSet for parsed source files.
	Files []*ast.File    // Parsed files, in supply order.

	BldLog io.Writer // Build log.
}

// FindFunc looks up a top-level function declaration by name across all
// parsed files, or nil.
func (i *Info) FindFunc(name string) (*ast.File, *ast.FuncDecl) {
	for _, f := range i.Files {
		for _, d := range f.Decls {
			if fd, ok := d.(*ast.FuncDecl); ok && fd.Name.Name == name {
				return f, fd
			}
		}
	}
	return nil, nil
}

// srcReader is a wrapper for source code which can be read through a
// NewReader.
type srcReader interface {
	names() []string
	readers() []io.Reader
}

type Configurer interface {
	Builder
	Default() Configurer
	WithBuildLog(l io.Writer, flags int) Configurer
}

// Config represents a build configuration.
type Config struct {
	mode parser.Mode

	bldLog    io.Writer // Build log.
	bldLFlags int       // Build log flags.

	src srcReader // src points to the program source.
}

func newConfig(src srcReader) *Config {
	return &Config{
		mode:      parser.ParseComments,
		bldLog:    ioutil.Discard,
		bldLFlags: log.LstdFlags,
		src:       src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer, flags int) Configurer {
	c.bldLog = l
	c.bldLFlags = flags
	return c
}

// Default returns a default configuration. Comments are always parsed;
// the pragma pass reads directives from them.
func (c *Config) Default() Configurer {
	c.mode = parser.ParseComments
	return c
}

// Build parses the configured source into one fileset.
func (c *Config) Build() (*Info, error) {
	fset := token.NewFileSet()
	bldLog := log.New(c.bldLog, "build: ", c.bldLFlags)

	names := c.src.names()
	var files []*ast.File
	for i, r := range c.src.readers() {
		f, err := parser.ParseFile(fset, names[i], r, c.mode)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	bldLog.Printf("Parsed %d file(s)", len(files))

	return &Info{
		FSet:   fset,
		Files:  files,
		BldLog: c.bldLog,
	}, nil
}
