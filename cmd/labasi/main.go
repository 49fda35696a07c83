package main

import (
	"github.com/labasi/labasi/internal/cli"
)

func main() {
	cli.Execute()
}
