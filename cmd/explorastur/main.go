package main

import (
	"os"

	"github.com/pmenendez/explorastur/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCmd()))
}
