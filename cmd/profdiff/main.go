// Command profdiff compares Salesforce profile permissions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rshade/profdiff/internal/cli"
	"github.com/rshade/profdiff/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(context.Background())
}
