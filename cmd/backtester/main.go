package main

import "github.com/rustyeddy/backtester/internal/cli"

func main() {
	cli.Execute()
}
