package main

import (
	"os"

	"github.com/fieldglass/listform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
