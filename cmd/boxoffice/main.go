package main

import "github.com/iliyamo/theatre-booking/cmd/boxoffice/commands"

func main() {
	commands.Execute()
}
