package main

import (
	"os"

	"github.com/sproutsell/agricredit/cmd/agricredit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
