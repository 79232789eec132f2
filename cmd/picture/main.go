package main

import (
	"os"

	"github.com/leeforge/picture/cmd/picture/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
