package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/termql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "termql: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
