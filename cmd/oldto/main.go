package main

import (
	"os"

	"github.com/oldto/oldto/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
