package main

import (
	"github.com/mcoot/gamerelay-go/internal/cli"
)

func main() {
	cli.Execute()
}
