package main

import "buffcomply/dashboard/cmd/buffcomply/commands"

func main() {
	commands.Execute()
}
