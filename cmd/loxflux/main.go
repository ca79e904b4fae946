// This file is part of loxflux.
//
// Copyright 2024 The LoxFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/loxflux/loxflux/engine"
	"github.com/loxflux/loxflux/repl"
	"github.com/loxflux/loxflux/vm"
)

var (
	trace   bool
	stats   bool
	gcStats bool
)

func init() {
	flag.BoolVar(&trace, "trace", false, "disassemble the compiled script before running it")
	flag.BoolVar(&stats, "stats", false, "print wall-clock run time on exit")
	flag.BoolVar(&gcStats, "gc-stats", false, "print allocator/collector counters on exit")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-trace] [-stats] [-gc-stats] [path]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	switch flag.NArg() {
	case 0:
		runREPL()
	case 1:
		os.Exit(runFile(flag.Arg(0)))
	default:
		usage()
		os.Exit(64)
	}
}

func runREPL() {
	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()
	vmi := engine.New(".", stdout, os.Stderr)
	if err := repl.New(vmi, os.Stdin, stdout).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runFile(path string) int {
	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()
	vmi := engine.New(".", stdout, os.Stderr)

	var traceOut io.Writer
	if trace {
		traceOut = os.Stderr
	}

	started := time.Now()
	err := engine.RunFileTraced(vmi, path, traceOut)
	elapsed := time.Since(started)

	if stats {
		fmt.Fprintf(os.Stderr, "elapsed: %s\n", elapsed)
	}
	if gcStats {
		s := vmi.Stats()
		fmt.Fprintf(os.Stderr, "allocated=%d nextGC=%d static=%d managed=%d\n",
			s.Allocated, s.NextGC, s.StaticCount, s.ManagedCount)
	}

	return exitCodeFor(err)
}

// exitCodeFor maps an Interpret error to the process exit status: 0 on
// success, 65 for a compile-time diagnostic set, 70 for an unwound
// runtime error.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	cause := errors.Cause(err)
	if ce, ok := cause.(*vm.CompileErrors); ok {
		for _, e := range ce.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return 65
	}
	if _, ok := cause.(*vm.RuntimeError); ok {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		return 70
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
	return 70
}
