package main

import (
	"os"

	"github.com/jamesruggles/scanledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
