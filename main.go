package main

import (
	"os"

	"github.com/picatz/rid/internal/cli"
)

func main() {
	if err := cli.CommandRoot.Execute(); err != nil {
		os.Exit(1)
	}
}
