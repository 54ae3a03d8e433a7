package main

import "domainwatch/cmd/domainwatch/commands"

func main() {
	commands.Execute()
}
