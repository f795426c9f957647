package main

import (
	"context"
	"os"

	"laptopcatalog/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
