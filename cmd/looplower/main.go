// Command looplower is the command line entry point to hardware loop
// lowering.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gohls/looplower/build"
	"github.com/gohls/looplower/lower"
	"github.com/gohls/looplower/solve"
)

const (
	Usage = `looplower lowers annotated loops in Go-subset source to hardware IR.

Usage:

  looplower [options] file.go [files.go...]

Options:

`
)

var (
	entry         string
	logPath       string
	maxUnroll     int64
	defaultUnroll bool
	verbose       bool
)

func init() {
	flag.StringVar(&entry, "entry", "main", "Name of the entry function to lower")
	flag.StringVar(&logPath, "log", "", "Specify build log file (use '-' for stderr)")
	flag.Int64Var(&maxUnroll, "max-unroll", 0, "Override the unroll iteration cap")
	flag.BoolVar(&defaultUnroll, "default-unroll", false, "Unroll loops without a directive")
	flag.BoolVar(&verbose, "v", false, "Verbose lowering log")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	conf := build.FromFiles(flag.Args()).Default()
	switch logPath {
	case "":
	case "-":
		conf = conf.WithBuildLog(os.Stderr, log.LstdFlags)
	default:
		f, err := os.Create(logPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", logPath, err)
		}
		defer f.Close()
		conf = conf.WithBuildLog(f, log.LstdFlags)
	}
	info, err := conf.Build()
	if err != nil {
		log.Fatal("Build failed: ", err)
	}

	file, fn := info.FindFunc(entry)
	if fn == nil {
		log.Fatalf("Entry function %q not found", entry)
	}

	cfg := lower.DefaultConfig()
	cfg.DefaultUnroll = defaultUnroll
	if maxUnroll > 0 {
		cfg.MaxUnrollIters = maxUnroll
	}
	t, err := lower.New(info.FSet, file, cfg, solve.NewFolder())
	if err != nil {
		log.Fatal("Lowering setup failed: ", err)
	}
	if verbose {
		t.SetLogger(lower.NewDevLogger())
	} else {
		t.SetLogger(lower.NewLogger())
	}
	if _, err := t.LowerFunc(fn); err != nil {
		log.Fatal("Lowering failed: ", err)
	}
	fmt.Fprint(os.Stdout, t.Package())
}
