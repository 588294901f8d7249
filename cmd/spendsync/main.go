package main

import (
	"os"

	"github.com/spendsync/spendsync/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
