package main

import (
	"fmt"
	"os"

	"github.com/R3E-Network/tasktracker/cmd/taskctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
