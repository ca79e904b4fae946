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

// Package repl implements the interactive shell: line accumulation with
// trailing-backslash continuation, and a handful of meta-commands for
// inspecting the running Instance.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/loxflux/loxflux/engine"
	"github.com/loxflux/loxflux/vm"
)

const banner = "loxflux REPL. Type /help for meta-commands, /exit to quit."

const helpText = `meta-commands:
  /exit         quit the REPL
  /help         show this text
  /clear        reset global bindings and the module cache
  /mem          print heap/allocator counters
  /eval <path>  run a source file in this REPL's instance
`

// REPL drives one interactive session against a single vm.Instance, so
// globals and imported modules persist across inputs.
type REPL struct {
	vmi    *vm.Instance
	in     *bufio.Reader
	out    io.Writer
	prompt string
	line   int
}

// New builds a REPL reading from in and writing prompts/output to out.
// vmi should already be configured by engine.New.
func New(vmi *vm.Instance, in io.Reader, out io.Writer) *REPL {
	return &REPL{vmi: vmi, in: bufio.NewReader(in), out: out, prompt: "> ", line: 1}
}

// Run reads and evaluates input until /exit or EOF.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, banner)
	for {
		source, ok, err := r.readStatement()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !ok {
			continue
		}
		if source == "" {
			continue
		}
		if strings.HasPrefix(source, "/") {
			if exit := r.meta(source); exit {
				return nil
			}
			continue
		}
		moduleName := fmt.Sprintf("<repl:%d>", r.line)
		r.line++
		if err := r.vmi.Interpret(source, moduleName); err != nil {
			fmt.Fprintf(r.out, "%v\n", err)
		}
	}
}

// readStatement accumulates lines until one doesn't end in a trailing
// backslash continuation marker, or reports EOF.
func (r *REPL) readStatement() (string, bool, error) {
	var b strings.Builder
	first := true
	for {
		fmt.Fprint(r.out, r.promptFor(first))
		line, err := r.in.ReadString('\n')
		if err != nil && line == "" {
			return "", false, io.EOF
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.HasSuffix(line, "\\") {
			b.WriteString(strings.TrimSuffix(line, "\\"))
			b.WriteByte('\n')
			first = false
			continue
		}
		b.WriteString(line)
		text := strings.TrimSpace(b.String())
		if text == "" {
			return "", false, nil
		}
		return text, true, nil
	}
}

func (r *REPL) promptFor(first bool) string {
	if first {
		return r.prompt
	}
	return "... "
}

// meta handles a leading-"/" command; it returns true when the session
// should end.
func (r *REPL) meta(cmd string) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case "/exit":
		return true
	case "/help":
		fmt.Fprint(r.out, helpText)
	case "/clear":
		r.vmi = engine.New(r.vmi.BaseDir, r.vmi.Stdout, r.vmi.Stderr)
		fmt.Fprintln(r.out, "globals and module cache cleared")
	case "/mem":
		s := r.vmi.Stats()
		fmt.Fprintf(r.out, "allocated=%d nextGC=%d static=%d managed=%d\n",
			s.Allocated, s.NextGC, s.StaticCount, s.ManagedCount)
	case "/eval":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /eval <path>")
			return false
		}
		if err := engine.RunFile(r.vmi, fields[1]); err != nil {
			fmt.Fprintf(r.out, "%v\n", err)
		}
	default:
		fmt.Fprintf(r.out, "unknown meta-command %q, try /help\n", fields[0])
	}
	return false
}
