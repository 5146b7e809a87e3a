package main

import "github.com/jayan110105/neura/internal/cli"

func main() {
	cli.Execute()
}
