package build

import (
	"bufio"
	"bytes"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"
)

// Builder parses source and returns its metainfo.
type Builder interface {
	Build() (*Info, error)
}

// FileSrc is a set of filenames.
type FileSrc struct {
	Files []string
}

// FromFiles returns a non-nil Builder from a slice of filenames.
func FromFiles(files []string) Configurer {
	return newConfig(&FileSrc{Files: files})
}

func (s *FileSrc) names() []string { return s.Files }

func (s *FileSrc) readers() []io.Reader {
	var rds []io.Reader
	for _, name := range s.Files {
		f, err := os.Open(name)
		if err != nil {
			log.Fatal(errors.Wrapf(err, "failed to read from file: %s", name))
		}
		rds = append(rds, bufio.NewReader(f))
	}
	return rds
}

// CachedSrc is source file from a reader.
type CachedSrc struct {
	cached []byte
}

// FromReader returns a non-nil Builder for a reader.
// This is typically used for testing.
func FromReader(r io.Reader) Configurer {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to read from reader"))
	}
	return newConfig(&CachedSrc{cached: b})
}

func (s *CachedSrc) names() []string { return []string{"src.go"} }

func (s *CachedSrc) readers() []io.Reader {
	return []io.Reader{bytes.NewReader(s.cached)}
}
