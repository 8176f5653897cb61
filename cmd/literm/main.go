package main

import (
	"fmt"
	"os"

	"github.com/TechXTT/LiteRM/pkg/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "literm:", err)
		os.Exit(1)
	}
}
