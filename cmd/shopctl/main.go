package main

import (
	"os"

	"go-repair-shop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
