package main

import (
	"os"

	"github.com/axondata/go-zergmgr/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
