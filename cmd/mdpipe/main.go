package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/mdpipe/internal/cli"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	inv, err := cli.FromProcess()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdpipe: %v\n", err)
		return 1
	}

	cmd := newRootCmd(inv)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	cli.Report(inv.Stderr, err, inv.StderrIsTTY)
	return cli.ExitCode(err)
}
