package main

import "woodlinks-backend/cmd/woodlinks/commands"

func main() {
	commands.Execute()
}
