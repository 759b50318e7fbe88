package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/aretw0/mdpipe/pkg/domain"
	"golang.org/x/term"
)

// FromProcess captures the working directory, standard streams and their
// terminal state. It is called once, in main.
func FromProcess() (domain.Invocation, error) {
	wd, err := os.Getwd()
	if err != nil {
		return domain.Invocation{}, fmt.Errorf("working directory: %w", err)
	}
	return domain.Invocation{
		WorkDir:     wd,
		Stdin:       os.Stdin,
		StdinIsTTY:  isTerminal(os.Stdin),
		Stdout:      os.Stdout,
		StdoutIsTTY: isTerminal(os.Stdout),
		Stderr:      os.Stderr,
		StderrIsTTY: isTerminal(os.Stderr),
		LookPath:    exec.LookPath,
	}, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ResolveInput applies the invocation rules and returns the input file, empty
// for stream input. Piped input forbids a file argument. A terminal on stdin
// needs exactly one file argument, or --output which is then also the input.
func ResolveInput(inv domain.Invocation, opts Options) (string, error) {
	if !inv.StdinIsTTY {
		if len(opts.Args) > 0 {
			return "", domain.Invocationf("cannot use a file argument with piped input")
		}
		return "", nil
	}

	switch len(opts.Args) {
	case 1:
		return opts.Args[0], nil
	case 0:
		if opts.Output != "" {
			return opts.Output, nil
		}
		return "", domain.Invocationf("missing input: pass a file, pipe a document or set --output")
	default:
		return "", domain.Invocationf("expected one file argument, got %d", len(opts.Args))
	}
}
