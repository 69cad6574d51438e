package main

import (
	"os"

	"github.com/heatflex/heatflex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
