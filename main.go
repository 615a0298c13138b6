package main

import "github.com/Rorical/GhostDeck/cmd"

func main() {
	cmd.Execute()
}
