// Command drcsql compiles domain relational calculus queries to SQL.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/drcsql/drcsql/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCommand()
	root.SetContext(context.Background())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
