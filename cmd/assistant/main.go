package main

import "github.com/kdziekansky/telegram2/internal/cli"

func main() {
	cli.Execute()
}
