package main

import "github.com/LeJamon/goclio/internal/cli"

func main() {
	cli.Execute()
}
