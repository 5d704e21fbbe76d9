package main

import (
	"github.com/custodia-labs/notecheck/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
