// Package visualize executes model-generated chart code.
//
// This is a trusted path, not a sandbox: the generated program runs with the
// user's privileges. The only names it is handed are the altair module as
// alt and a SQLAlchemy engine as engine.
package visualize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// EngineURLEnv carries the SQLAlchemy URL to the bootstrap script so
// credentials never appear in generated code or on the command line.
const EngineURLEnv = "REMI_ENGINE_URL"

const bootstrap = `import os
import sys

import altair as alt
from sqlalchemy import create_engine

engine = create_engine(os.environ["` + EngineURLEnv + `"])
with open(sys.argv[1], encoding="utf-8") as source:
    code = compile(source.read(), "<generated>", "exec")
exec(code, {"__builtins__": __builtins__, "alt": alt, "engine": engine})
`

// Runner executes generated chart code.
type Runner interface {
	Run(ctx context.Context, code string) error
}

// PythonRunner runs code through an external Python interpreter.
type PythonRunner struct {
	Interpreter string
	EngineURL   string
	Dir         string // working directory, where charts are saved
	Stdout      io.Writer
	Stderr      io.Writer
}

// Run implements Runner. Empty code is rejected without starting a process.
func (r *PythonRunner) Run(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("no visualization code to run")
	}

	scratch, err := os.MkdirTemp("", "remi-chart-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	bootstrapPath := filepath.Join(scratch, "bootstrap.py")
	codePath := filepath.Join(scratch, "chart.py")
	if err := os.WriteFile(bootstrapPath, []byte(bootstrap), 0o600); err != nil {
		return fmt.Errorf("failed to write bootstrap script: %w", err)
	}
	if err := os.WriteFile(codePath, []byte(code), 0o600); err != nil {
		return fmt.Errorf("failed to write chart code: %w", err)
	}

	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory %s: %w", dir, err)
	}

	interpreter := r.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interpreter, bootstrapPath, codePath)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), EngineURLEnv+"="+r.EngineURL)
	cmd.Stdout = r.Stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("visualization code failed: %w: %s", err, msg)
		}
		return fmt.Errorf("visualization code failed: %w", err)
	}
	return nil
}

// lastLine returns the final non-empty line, which for a Python traceback is
// the exception message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
