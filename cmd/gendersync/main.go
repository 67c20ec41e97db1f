package main

import "github.com/wildfiresync/gendersync/internal/cli"

func main() {
	cli.Execute()
}
