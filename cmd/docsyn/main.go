// Package main provides the entry point for the docsyn CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/docsyn/cmd/docsyn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
