package main

import "clipworks/internal/cli"

func main() {
	cli.Main()
}
