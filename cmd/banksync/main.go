package main

import (
	"os"

	"github.com/aussiebroadwan/banksync/cmd/banksync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
