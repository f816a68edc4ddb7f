package main

import (
	"fmt"
	"os"

	"github.com/go-gdbindex/gdbindex/cmd/gdbindex/cmds"
)

func main() {
	args, err := cmds.ExpandResponseFiles(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := cmds.New()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
