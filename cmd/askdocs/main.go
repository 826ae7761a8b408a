package main

import (
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
