package main

import (
	"os"

	"github.com/xushengj/bundlekit/cmd/bundlerun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
