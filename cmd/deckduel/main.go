package main

import "github.com/mcoot/deckduel/internal/cli"

func main() {
	cli.Execute()
}
