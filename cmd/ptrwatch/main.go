package main

import (
	"os"

	"github.com/ptrwatch-dev/ptrwatch/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
