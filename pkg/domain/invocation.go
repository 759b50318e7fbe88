package domain

import (
	"io"
	"os/exec"
)

// Invocation replaces hidden reads of process state. It is built once at the
// edge of the program and passed to every component.
type Invocation struct {
	WorkDir string

	Stdin      io.Reader
	StdinIsTTY bool

	Stdout      io.Writer
	StdoutIsTTY bool

	Stderr      io.Writer
	StderrIsTTY bool

	// LookPath resolves executables by name. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// PathLookup returns inv.LookPath or exec.LookPath when unset.
func (inv Invocation) PathLookup() func(string) (string, error) {
	if inv.LookPath != nil {
		return inv.LookPath
	}
	return exec.LookPath
}
