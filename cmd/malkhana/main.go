package main

import (
	"os"

	"github.com/example/malkhana/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
