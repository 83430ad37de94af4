package main

import (
	"fmt"
	"os"

	"kosan_backend/cmd/kosanctl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
