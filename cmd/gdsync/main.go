package main

import (
	"os"

	"github.com/dl-alexandre/gdsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
