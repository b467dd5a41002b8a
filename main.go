package main

import "github.com/cbout22/randl/internal/cli"

func main() {
	cli.Execute()
}
