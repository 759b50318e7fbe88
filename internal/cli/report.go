package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/muesli/termenv"
)

// Report prints err to w as the single failure message of the program. The
// prefix is coloured when tty is set.
func Report(w io.Writer, err error, tty bool) {
	if err == nil {
		return
	}
	profile := termenv.Ascii
	if tty {
		profile = termenv.ANSI
	}
	out := termenv.NewOutput(w, termenv.WithProfile(profile))
	prefix := out.String("mdpipe:").Foreground(out.Color("1")).Bold()

	var runErr *domain.Error
	if errors.As(err, &runErr) {
		fmt.Fprintf(w, "%s %s error: %s\n", prefix, runErr.Kind, runErr.Diagnostic())
		return
	}
	fmt.Fprintf(w, "%s %s\n", prefix, err)
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
