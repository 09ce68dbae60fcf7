package main

import (
	"os"

	"github.com/leftmike/cubist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
