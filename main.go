package main

import "longevity/internal/cli"

func main() {
	cli.Execute()
}
