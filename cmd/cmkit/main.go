package main

import "cmkit/internal/cli"

func main() {
	cli.Execute()
}
