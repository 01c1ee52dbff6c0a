package main

import (
	"os"

	"github.com/vanshika/astronum/backend/cmd/numctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
