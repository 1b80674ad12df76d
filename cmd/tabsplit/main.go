package main

import (
	"os"

	"github.com/tabsplit-dev/tabsplit/internal/commands"
	"github.com/tabsplit-dev/tabsplit/pkg/logging"
)

func main() {
	logging.Setup()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
