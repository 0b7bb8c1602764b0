package main

import (
	"tradejournal/internal/cli"
)

func main() {
	cli.Execute()
}
