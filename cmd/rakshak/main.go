package main

import (
	"os"

	"github.com/straja-ai/rakshak/cmd/rakshak/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
